// Package buildgen renders BUILD and WORKSPACE file fragments for generated
// packages. It only supports the small subset of Starlark syntax that the
// package builders actually emit: rule calls with string, list, dict and
// nested call attributes.
package buildgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

const indent = "    "

// Attr is a single named argument of a rule call. Attribute order is
// preserved so the rendered output stays stable.
type Attr struct {
	Name  string
	Value any
}

// Call represents a Starlark call such as cc_library(...) or glob([...]).
type Call struct {
	Kind       string
	Positional any
	Attrs      []Attr
}

// NewCall builds a call with the given attributes.
func NewCall(kind string, attrs ...Attr) *Call {
	return &Call{Kind: kind, Attrs: attrs}
}

// Glob returns a call that renders to glob([...], ...).
func Glob(patterns []string, attrs ...Attr) *Call {
	return &Call{Kind: "glob", Positional: patterns, Attrs: attrs}
}

// Select returns a call that renders to select({...}).
func Select(branches map[string]any) *Call {
	return &Call{Kind: "select", Positional: branches}
}

func escape(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"\n", `\n`,
		`"`, `\"`,
		`'`, `\'`,
	)
	return replacer.Replace(value)
}

func serializeValue(value any, prefix string) (string, error) {
	switch value := value.(type) {
	case string:
		return `"` + escape(value) + `"`, nil
	case bool:
		if value {
			return "True", nil
		}
		return "False", nil
	case int:
		return fmt.Sprintf("%d", value), nil
	case Label:
		return value.serialize(), nil
	case *Call:
		return value.serialize(prefix)
	case []string:
		items := make([]any, len(value))
		for idx, item := range value {
			items[idx] = item
		}
		return serializeValue(items, prefix)
	case []any:
		builder := strings.Builder{}
		builder.WriteString("[\n")
		for _, item := range value {
			rendered, err := serializeValue(item, prefix+indent)
			if err != nil {
				return "", err
			}
			builder.WriteString(prefix + indent + rendered + ",\n")
		}
		builder.WriteString(prefix + "]")
		return builder.String(), nil
	case map[string]any:
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		builder := strings.Builder{}
		builder.WriteString("{\n")
		for _, key := range keys {
			rendered, err := serializeValue(value[key], prefix+indent)
			if err != nil {
				return "", err
			}
			builder.WriteString(fmt.Sprintf("%s\"%s\": %s,\n", prefix+indent, escape(key), rendered))
		}
		builder.WriteString(prefix + "}")
		return builder.String(), nil
	default:
		return "", eris.Errorf("can't serialize value of type %T", value)
	}
}

func (c *Call) serialize(prefix string) (string, error) {
	builder := strings.Builder{}
	builder.WriteString(c.Kind + "(")

	inline := c.Positional != nil && len(c.Attrs) == 0
	if c.Positional != nil {
		rendered, err := serializeValue(c.Positional, prefix)
		if err != nil {
			return "", eris.Wrapf(err, "failed to serialize %s", c.Kind)
		}
		if !inline {
			builder.WriteString("\n" + prefix + indent)
		}
		builder.WriteString(rendered)
		if !inline {
			builder.WriteString(",\n")
		}
	} else {
		builder.WriteString("\n")
	}

	for _, attr := range c.Attrs {
		rendered, err := serializeValue(attr.Value, prefix+indent)
		if err != nil {
			return "", eris.Wrapf(err, "failed to serialize attribute %s of %s", attr.Name, c.Kind)
		}
		builder.WriteString(fmt.Sprintf("%s%s%s = %s,\n", prefix, indent, attr.Name, rendered))
	}

	if !inline {
		builder.WriteString(prefix)
	}
	builder.WriteString(")")
	return builder.String(), nil
}

// Render returns the call as a full statement followed by a newline.
func (c *Call) Render() (string, error) {
	result, err := c.serialize("")
	if err != nil {
		return "", err
	}
	return result + "\n", nil
}

// Label points at a rule inside a generated package. Labels created inside a
// nested repository render through the parent's bind entry instead.
type Label struct {
	Package string
	Name    string
	parent  *Helper
}

func (l Label) String() string {
	if l.parent != nil {
		return l.parent.Bind(l.Package, l.Name)
	}
	return fmt.Sprintf("//%s:%s", l.Package, l.Name)
}

func (l Label) serialize() string {
	return `"` + l.String() + `"`
}

package main

import "github.com/bazelinit/bazel-init/cmd"

func main() {
	cmd.Execute()
}

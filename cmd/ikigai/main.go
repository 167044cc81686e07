// Package main is the single-binary entrypoint for Ikigai.
package main

import "github.com/ikigai-wellness/ikigai/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}

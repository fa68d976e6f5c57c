// Package main provides the entry point for the docpipe CLI.
//
// docpipe runs a three-stage document pipeline (fetch, process, analyze)
// whose stages coordinate only through files in a shared root directory.
// Each stage can run as its own process, or all three can run in one.
//
// Usage:
//
//	docpipe fetch   --root /shared
//	docpipe process --root /shared
//	docpipe analyze --root /shared
//	docpipe run     --root /shared
//
// See --help for all available options.
package main

func main() {
	Execute()
}

// Package main provides a CLI for compiling and running sqltemplate query trees.
//
// The CLI supports:
//   - compile: Render a YAML/JSON query tree to SQL
//   - exec: Compile a tree and run it against the configured database
//   - config show: Print the effective configuration
//   - doctor: Check configuration, connectivity and tree files
//   - version: Print build information
//
// Usage:
//
//	sqltemplate [flags] <command>
package main

func main() {
	Execute()
}

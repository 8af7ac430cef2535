// Package main is the entry point for the gollate CLI.
package main

import "gollate.dev/pkg/gollate/cmd"

func main() {
	cmd.Execute()
}

// Command tasktree manages per-owner lists of nested tasks from the command
// line and serves them over HTTP.
package main

import "github.com/mesh-intelligence/tasktree/internal/cli"

func main() {
	cli.Execute()
}

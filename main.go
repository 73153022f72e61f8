package main

import "github.com/janvogt/notion-qa-mcp/cmd"

func main() {
	cmd.Execute()
}

// ABOUTME: Entry point for the crmdesk CLI, TUI, web API and MCP server
// ABOUTME: Hands argument parsing to the cobra command tree
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/crmdesk/cli"
)

const version = "0.2.0"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

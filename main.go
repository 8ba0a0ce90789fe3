package main

import (
	"fmt"
	"os"

	"tokenhealth/cmd"
)

func main() {
	// Initialize the root command
	c := cmd.RootCmd()
	// Add the serve subcommand
	c.AddCommand(cmd.StartServeCmd())

	// Execute the command and handle any errors
	if err := c.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "There was an error while executing tokenhealth CLI '%s'", err)
		os.Exit(1)
	}
}

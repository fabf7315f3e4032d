package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var discoverFormat string

var discoverCmd = &cobra.Command{
	Use:   "discover <term>...",
	Short: "Search the component catalog by context terms",
	Long: `Rank catalog components against one or more context terms.

Name matches weigh most, declared-domain matches next, API and event name
fragments least. An empty result means no catalog evidence, not an error.

Examples:
  archscope discover order
  archscope discover "support ticket" escalation --format=json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&discoverFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) {
	logger := newLogger(discoverFormat)
	workspaceRoot := mustGetWorkspaceRoot()
	eng := mustGetEngine(workspaceRoot, logger)

	matches, err := eng.Discover(newContext(), args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running discovery: %v\n", err)
		os.Exit(1)
	}

	if discoverFormat == "json" {
		output, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
		return
	}

	if len(matches) == 0 {
		fmt.Println("No matching components.")
		return
	}
	for _, m := range matches {
		fmt.Printf("%3d  %-30s %s\n", m.Score, m.Component.Name, m.Component.Domain)
	}
}

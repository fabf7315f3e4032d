package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <request>",
	Short: "Show how a request is tagged and scored, without opening a session",
	Args:  cobra.ExactArgs(1),
	Run:   runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	eng := mustGetEngine(mustGetWorkspaceRoot(), logger)
	request := args[0]

	fmt.Println("Tags:")
	tags := eng.Tags(request)
	if len(tags) == 0 {
		fmt.Println("  (no domain vocabulary matched)")
	}
	for _, tag := range tags {
		line := fmt.Sprintf("  %-10s %q", tag.Kind, tag.Text)
		if tag.Term != tag.Text {
			line += fmt.Sprintf(" -> %q", tag.Term)
		}
		if tag.AttachedTo >= 0 && tag.AttachedTo < len(tags) {
			line += fmt.Sprintf(" (modifies %q)", tags[tag.AttachedTo].Text)
		}
		fmt.Println(line)
	}

	snap := eng.Analyze(request).Snapshot()
	fmt.Println("\nImpacted domains:")
	if len(snap.Impacts) == 0 {
		fmt.Println("  (none)")
	}
	for _, row := range snap.Impacts {
		fmt.Printf("  %-25s %-12s %s\n", row.Domain, row.Impact, row.Confidence)
	}
}

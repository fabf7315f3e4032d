package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"archscope/internal/export"
)

var (
	analyzeFormat string
	analyzeNoSave bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <request>",
	Short: "Analyze a change request against the architecture",
	Long: `Analyze a free-form change request: tag it against the domain ontology,
score the impacted domains, and resolve them to catalog components.

The analysis opens a refinement session. If questions remain, continue with
"archscope refine"; otherwise the hypothesis is final.

Examples:
  archscope analyze "When a premium customer submits a support ticket, notify the team lead"
  archscope analyze "redesign the billing dashboard" --format=markdown`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "Output format (json, markdown)")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not persist the session")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(analyzeFormat)
	request := args[0]

	workspaceRoot := mustGetWorkspaceRoot()
	eng := mustGetEngine(workspaceRoot, logger)

	sess := eng.Analyze(request)

	if !analyzeNoSave {
		if st, err := getStore(workspaceRoot, logger); err == nil {
			if err := st.Save(newContext(), sess); err != nil {
				logger.Warn("Failed to persist session", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	exporter := export.NewExporter(logger)
	output, err := exporter.Render(sess.Snapshot(), analyzeFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(output))

	if q, ok := sess.NextQuestion(); ok {
		fmt.Fprintf(os.Stderr, "Next question [%s] %s: %s\n", q.Priority, q.ID, q.Prompt)
		fmt.Fprintf(os.Stderr, "Answer with: archscope refine answer %s %s <answer>\n", sess.ID(), q.ID)
	}

	logger.Debug("Analysis completed", map[string]interface{}{
		"sessionId": sess.ID(),
		"state":     string(sess.State()),
		"duration":  time.Since(start).Milliseconds(),
	})
}

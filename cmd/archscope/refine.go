package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archscope/internal/export"
)

var (
	refineFormat string
	refineLimit  int
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Continue a refinement session",
	Long: `Work through the open questions of a stored refinement session.

A session resolves once every HIGH and MEDIUM priority question is answered;
LOW priority questions are optional context and never block.

Examples:
  archscope refine list
  archscope refine next 6f1c...
  archscope refine answer 6f1c... Q1 yes
  archscope refine show 6f1c... --format=markdown`,
}

var refineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Run:   runRefineList,
}

var refineNextCmd = &cobra.Command{
	Use:   "next <sessionId>",
	Short: "Show the most urgent open question",
	Args:  cobra.ExactArgs(1),
	Run:   runRefineNext,
}

var refineAnswerCmd = &cobra.Command{
	Use:   "answer <sessionId> <questionId> <answer>",
	Short: "Answer an open question",
	Args:  cobra.ExactArgs(3),
	Run:   runRefineAnswer,
}

var refineShowCmd = &cobra.Command{
	Use:   "show <sessionId>",
	Short: "Show the session's current hypothesis",
	Args:  cobra.ExactArgs(1),
	Run:   runRefineShow,
}

var refineAbandonCmd = &cobra.Command{
	Use:   "abandon <sessionId>",
	Short: "Mark a session stalled, keeping its open questions as context",
	Args:  cobra.ExactArgs(1),
	Run:   runRefineAbandon,
}

func init() {
	refineListCmd.Flags().IntVar(&refineLimit, "limit", 20, "Maximum sessions to list")
	refineShowCmd.Flags().StringVar(&refineFormat, "format", "json", "Output format (json, markdown)")

	refineCmd.AddCommand(refineListCmd, refineNextCmd, refineAnswerCmd, refineShowCmd, refineAbandonCmd)
	rootCmd.AddCommand(refineCmd)
}

func runRefineList(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	workspaceRoot := mustGetWorkspaceRoot()
	mustGetEngine(workspaceRoot, logger)
	st := mustGetStore(workspaceRoot, logger)

	summaries, err := st.List(newContext(), refineLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing sessions: %v\n", err)
		os.Exit(1)
	}
	if len(summaries) == 0 {
		fmt.Println("No stored sessions.")
		return
	}
	for _, s := range summaries {
		fmt.Printf("%s  [%s]  %s\n", s.ID, s.State, s.Request)
	}
}

func runRefineNext(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	workspaceRoot := mustGetWorkspaceRoot()
	eng := mustGetEngine(workspaceRoot, logger)
	st := mustGetStore(workspaceRoot, logger)
	ctx := newContext()

	sess, err := st.Load(ctx, args[0], eng.Catalog())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
		os.Exit(1)
	}

	q, ok := sess.NextQuestion()
	if !ok {
		fmt.Printf("No open questions; session is %s.\n", sess.State())
		return
	}
	if err := st.Save(ctx, sess); err != nil {
		logger.Warn("Failed to persist session", map[string]interface{}{"error": err.Error()})
	}

	fmt.Printf("[%s] %s (%s): %s\n", q.Priority, q.ID, q.Kind, q.Prompt)
}

func runRefineAnswer(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	workspaceRoot := mustGetWorkspaceRoot()
	eng := mustGetEngine(workspaceRoot, logger)
	st := mustGetStore(workspaceRoot, logger)
	ctx := newContext()

	sessionID, questionID, answer := args[0], args[1], args[2]

	sess, err := st.Load(ctx, sessionID, eng.Catalog())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
		os.Exit(1)
	}

	if err := sess.Answer(questionID, answer); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying answer: %v\n", err)
		os.Exit(1)
	}
	if err := st.Save(ctx, sess); err != nil {
		fmt.Fprintf(os.Stderr, "Error persisting session: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Session %s is now %s.\n", sess.ID(), sess.State())
	if q, ok := sess.NextQuestion(); ok {
		fmt.Printf("Next question [%s] %s: %s\n", q.Priority, q.ID, q.Prompt)
	}
}

func runRefineShow(cmd *cobra.Command, args []string) {
	logger := newLogger(refineFormat)
	workspaceRoot := mustGetWorkspaceRoot()
	eng := mustGetEngine(workspaceRoot, logger)
	st := mustGetStore(workspaceRoot, logger)

	sess, err := st.Load(newContext(), args[0], eng.Catalog())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
		os.Exit(1)
	}

	exporter := export.NewExporter(logger)
	output, err := exporter.Render(sess.Snapshot(), refineFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(output))
}

func runRefineAbandon(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	workspaceRoot := mustGetWorkspaceRoot()
	eng := mustGetEngine(workspaceRoot, logger)
	st := mustGetStore(workspaceRoot, logger)
	ctx := newContext()

	sess, err := st.Load(ctx, args[0], eng.Catalog())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
		os.Exit(1)
	}

	sess.Abandon()
	if err := st.Save(ctx, sess); err != nil {
		fmt.Fprintf(os.Stderr, "Error persisting session: %v\n", err)
		os.Exit(1)
	}

	snapshot, _ := json.MarshalIndent(sess.Snapshot(), "", "  ")
	fmt.Println(string(snapshot))
}

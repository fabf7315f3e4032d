package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"archscope/internal/export"
)

var (
	exportFormat   string
	exportCompress bool
	exportDir      string
)

var exportCmd = &cobra.Command{
	Use:   "export <sessionId>",
	Short: "Export a session's hypothesis to a file",
	Long: `Export the assembled change hypothesis of a stored session.

Formats:
  json      machine-readable hypothesis (default)
  markdown  design-document section

Examples:
  archscope export 6f1c...
  archscope export 6f1c... --format=markdown --compress`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format (json, markdown)")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "Write a zstd-compressed bundle")
	exportCmd.Flags().StringVar(&exportDir, "out", "", "Output directory (default: configured export dir)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	workspaceRoot := mustGetWorkspaceRoot()
	eng := mustGetEngine(workspaceRoot, logger)
	st := mustGetStore(workspaceRoot, logger)

	sess, err := st.Load(newContext(), args[0], eng.Catalog())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
		os.Exit(1)
	}

	opts := export.Options{
		Format:   exportFormat,
		Compress: exportCompress,
		Dir:      exportDir,
	}
	if opts.Dir == "" {
		dir := ".archscope/exports"
		if sharedConfig != nil {
			dir = sharedConfig.Export.Dir
		}
		opts.Dir = filepath.Join(workspaceRoot, dir)
	}
	if sharedConfig != nil && sharedConfig.Export.Compress {
		opts.Compress = true
	}

	path, err := export.NewExporter(logger).Write(sess.Snapshot(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting hypothesis: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %s\n", path)
}

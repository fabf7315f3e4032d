package main

import (
	"archscope/internal/version"

	"github.com/spf13/cobra"
)

var (
	// workspaceFlag overrides the workspace root (defaults to the working directory)
	workspaceFlag string
)

var rootCmd = &cobra.Command{
	Use:   "archscope",
	Short: "archscope - architectural intent resolution",
	Long: `archscope maps free-form change requests onto a declared business
architecture: it tags the request against the domain ontology, scores the
impacted domains, narrows them to catalog components, and refines the result
through targeted questions into a reviewable change hypothesis.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("archscope version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "",
		"Workspace root containing DOMAINS.yaml and COMPONENTS.toml (default: current directory)")
}

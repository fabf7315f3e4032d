package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archscope/internal/ontology"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the workspace ontology and component catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered components",
	Run:   runCatalogList,
}

var catalogDomainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List declared domains and their vocabulary",
	Run:   runCatalogDomains,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate DOMAINS.yaml, COMPONENTS.toml, and RULES.toml",
	Run:   runCatalogValidate,
}

func init() {
	catalogListCmd.Flags().StringVar(&catalogFormat, "format", "human", "Output format (json, human)")
	catalogDomainsCmd.Flags().StringVar(&catalogFormat, "format", "human", "Output format (json, human)")

	catalogCmd.AddCommand(catalogListCmd, catalogDomainsCmd, catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) {
	logger := newLogger(catalogFormat)
	eng := mustGetEngine(mustGetWorkspaceRoot(), logger)

	components := eng.Catalog().Snapshot()
	if catalogFormat == "json" {
		output, err := json.MarshalIndent(components, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
		return
	}

	for _, c := range components {
		marker := ""
		if c.Speculative {
			marker = " (speculative)"
		}
		fmt.Printf("%-30s %-25s %s%s\n", c.Name, c.Domain, c.Type, marker)
	}
}

func runCatalogDomains(cmd *cobra.Command, args []string) {
	logger := newLogger(catalogFormat)
	eng := mustGetEngine(mustGetWorkspaceRoot(), logger)

	domains := eng.Ontology().Domains()
	if catalogFormat == "json" {
		output, err := json.MarshalIndent(domains, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
		return
	}

	for _, d := range domains {
		fmt.Printf("%s (%s)\n", d.Name, d.Kind)
		if d.Responsibility != "" {
			fmt.Printf("    %s\n", d.Responsibility)
		}
		for phrase, weight := range d.Triggers {
			fmt.Printf("    trigger %q weight %.1f\n", phrase, weight)
		}
		for _, e := range d.OwnedEntities {
			fmt.Printf("    owns %q\n", e)
		}
	}
}

func runCatalogValidate(cmd *cobra.Command, args []string) {
	workspaceRoot := mustGetWorkspaceRoot()

	ws, err := ontology.LoadWorkspace(workspaceRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Workspace invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Workspace OK: %d domains, %d components.\n",
		len(ws.Ontology.Domains()), ws.Catalog.Len())
}

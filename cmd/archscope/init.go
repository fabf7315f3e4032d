package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"archscope/internal/config"
	"archscope/internal/ontology"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter workspace",
	Long: `Create starter DOMAINS.yaml, COMPONENTS.toml, and .archscope/config.json
files in the workspace root. Existing files are left alone unless --force.`,
	Run: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing workspace files")
	rootCmd.AddCommand(initCmd)
}

const starterDomains = `# Business domains and their vocabulary.
# kind: business | frontend | integration | analytics | other
domains:
  - name: Customer & Identity
    kind: business
    responsibility: Customer accounts, profiles, and support tickets
    triggers:
      customer: 2
      account: 2
    owned_entities:
      - customer
      - support ticket
  - name: Frontend Experience
    kind: frontend
    responsibility: User-facing views and dashboards
    triggers:
      dashboard: 3
  - name: Integration & Event
    kind: integration
    responsibility: Notifications and cross-system side effects
    triggers:
      notify: 5
`

const starterComponents = `# Registered components.
# type: backend-service | frontend-app | shared-library | integration

[[component]]
name = "customer-service"
domain = "Customer & Identity"
type = "backend-service"
apis = ["GET /customers/{id}"]

[[component]]
name = "agent-dashboard"
domain = "Frontend Experience"
type = "frontend-app"

[[component]]
name = "notification-service"
domain = "Integration & Event"
type = "integration"
`

func runInit(cmd *cobra.Command, args []string) {
	workspaceRoot := mustGetWorkspaceRoot()

	files := map[string]string{
		ontology.DomainsFile:    starterDomains,
		ontology.ComponentsFile: starterComponents,
	}
	for name, content := range files {
		path := filepath.Join(workspaceRoot, name)
		if _, err := os.Stat(path); err == nil && !initForce {
			fmt.Printf("Skipping %s (exists; use --force to overwrite)\n", name)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", name)
	}

	cfgPath := filepath.Join(workspaceRoot, ".archscope", "config.json")
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		fmt.Println("Skipping .archscope/config.json (exists; use --force to overwrite)")
		return
	}
	if err := config.DefaultConfig().Save(workspaceRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Wrote .archscope/config.json")
}

package ontology

import (
	"fmt"
	"os"
	"path/filepath"

	bstoml "github.com/BurntSushi/toml"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"archscope/internal/errors"
)

// Workspace file names. A workspace directory declares the knowledge base
// the engine analyzes against.
const (
	// DomainsFile declares the business domains and their vocabulary
	DomainsFile = "DOMAINS.yaml"
	// ComponentsFile declares the component catalog
	ComponentsFile = "COMPONENTS.toml"
	// RulesFile optionally overrides scoring weights and thresholds
	RulesFile = "RULES.toml"
)

// domainsFile is the root structure of DOMAINS.yaml
type domainsFile struct {
	Version int      `yaml:"version"`
	Domains []Domain `yaml:"domains"`
}

// componentsFile is the root structure of COMPONENTS.toml
type componentsFile struct {
	Version    int                   `toml:"version"`
	Components []ComponentDescriptor `toml:"component"`
}

// RuleOverrides optionally replaces scoring defaults per workspace. The
// numeric scoring knobs are configuration, not code constants.
type RuleOverrides struct {
	// HighThreshold overrides the score at which a domain is HIGH confidence
	HighThreshold float64 `toml:"high_threshold"`

	// OwnershipBonus overrides the fixed bonus for owned-entity matches
	OwnershipBonus float64 `toml:"ownership_bonus"`

	// DefaultTriggerWeight overrides the weight of triggers declared without one
	DefaultTriggerWeight float64 `toml:"default_trigger_weight"`

	// Triggers overrides individual trigger weights: domain name -> phrase -> weight
	Triggers map[string]map[string]float64 `toml:"triggers"`
}

// Workspace is a fully loaded and validated knowledge base.
type Workspace struct {
	Ontology *Ontology
	Catalog  *Catalog
	Rules    *RuleOverrides // nil when no RULES.toml is present
}

// LoadWorkspace reads DOMAINS.yaml and COMPONENTS.toml from dir, applies
// RULES.toml overrides when present, and validates the result. The engine
// never parses configuration after this point.
func LoadWorkspace(dir string) (*Workspace, error) {
	domains, err := loadDomains(filepath.Join(dir, DomainsFile))
	if err != nil {
		return nil, err
	}

	rules, err := loadRules(filepath.Join(dir, RulesFile))
	if err != nil {
		return nil, err
	}

	defaultWeight := 1.0
	if rules != nil {
		if rules.DefaultTriggerWeight > 0 {
			defaultWeight = rules.DefaultTriggerWeight
		}
		applyTriggerOverrides(domains, rules.Triggers)
	}

	ont, err := New(domains, defaultWeight)
	if err != nil {
		return nil, err
	}

	descriptors, err := loadComponents(filepath.Join(dir, ComponentsFile))
	if err != nil {
		return nil, err
	}

	catalog, err := NewCatalog(descriptors, ont)
	if err != nil {
		return nil, err
	}

	return &Workspace{Ontology: ont, Catalog: catalog, Rules: rules}, nil
}

// loadDomains parses DOMAINS.yaml
func loadDomains(path string) ([]Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.OntologyInvalid, fmt.Sprintf("failed to read %s", filepath.Base(path)), err)
	}

	var file domainsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.New(errors.OntologyInvalid, fmt.Sprintf("failed to parse %s", filepath.Base(path)), err)
	}
	if len(file.Domains) == 0 {
		return nil, errors.New(errors.OntologyInvalid, "no domains declared", nil)
	}

	return file.Domains, nil
}

// loadComponents parses COMPONENTS.toml
func loadComponents(path string) ([]ComponentDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CatalogInvalid, fmt.Sprintf("failed to read %s", filepath.Base(path)), err)
	}

	var file componentsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.New(errors.CatalogInvalid, fmt.Sprintf("failed to parse %s", filepath.Base(path)), err)
	}

	return file.Components, nil
}

// loadRules parses RULES.toml if it exists; a missing file is not an error.
func loadRules(path string) (*RuleOverrides, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var rules RuleOverrides
	if _, err := bstoml.DecodeFile(path, &rules); err != nil {
		return nil, errors.New(errors.OntologyInvalid, fmt.Sprintf("failed to parse %s", filepath.Base(path)), err)
	}
	if rules.HighThreshold < 0 || rules.OwnershipBonus < 0 || rules.DefaultTriggerWeight < 0 {
		return nil, errors.New(errors.OntologyInvalid, "rule overrides must be non-negative", nil)
	}

	return &rules, nil
}

// applyTriggerOverrides merges per-domain trigger weight overrides in place.
// Overrides may also introduce triggers the domain did not declare.
func applyTriggerOverrides(domains []Domain, overrides map[string]map[string]float64) {
	if len(overrides) == 0 {
		return
	}
	for i := range domains {
		byPhrase, ok := overrides[domains[i].Name]
		if !ok {
			continue
		}
		if domains[i].Triggers == nil {
			domains[i].Triggers = make(map[string]float64, len(byPhrase))
		}
		for phrase, weight := range byPhrase {
			domains[i].Triggers[phrase] = weight
		}
	}
}

package ontology

import (
	"fmt"
	"strings"
	"sync"

	"archscope/internal/errors"
)

// ComponentType represents the deployment shape of a component
type ComponentType string

const (
	TypeBackendService ComponentType = "backend-service"
	TypeFrontendApp    ComponentType = "frontend-app"
	TypeSharedLibrary  ComponentType = "shared-library"
	TypeIntegration    ComponentType = "integration"
)

// DomainUnknown marks components registered mid-session from an answer that
// named a component not in the catalog. Such entries are speculative and
// carry no domain-consistency guarantee.
const DomainUnknown = "unknown"

// ComponentDescriptor describes one registered component
type ComponentDescriptor struct {
	// Name is the unique component name (catalog key)
	Name string `toml:"name" json:"name"`

	// Domain is the owning domain name; DomainUnknown for speculative entries
	Domain string `toml:"domain" json:"domain"`

	// Type is the component's deployment shape
	Type ComponentType `toml:"type" json:"type"`

	// Technology is optional and may stay empty until discovered
	Technology string `toml:"technology,omitempty" json:"technology,omitempty"`

	// APIs are the exposed API names
	APIs []string `toml:"apis,omitempty" json:"apis,omitempty"`

	// PublishedEvents are event names this component publishes
	PublishedEvents []string `toml:"published_events,omitempty" json:"publishedEvents,omitempty"`

	// ConsumedEvents are event names this component consumes
	ConsumedEvents []string `toml:"consumed_events,omitempty" json:"consumedEvents,omitempty"`

	// Speculative marks entries proposed by the engine rather than registered
	Speculative bool `toml:"-" json:"speculative,omitempty"`
}

// Catalog is the component registry. Reads take an immutable snapshot;
// registration swaps in a fresh copy under a write lock, so rare writes
// never block in-flight discovery reads.
type Catalog struct {
	mu         sync.RWMutex
	components []ComponentDescriptor // insertion order, significant for ranking ties
	byName     map[string]int
}

// NewCatalog validates descriptors and builds a catalog preserving insertion
// order. The ontology may be nil when domain consistency is checked elsewhere.
func NewCatalog(descriptors []ComponentDescriptor, ont *Ontology) (*Catalog, error) {
	c := &Catalog{
		components: make([]ComponentDescriptor, 0, len(descriptors)),
		byName:     make(map[string]int, len(descriptors)),
	}

	for i, d := range descriptors {
		if strings.TrimSpace(d.Name) == "" {
			return nil, errors.New(errors.CatalogInvalid, fmt.Sprintf("component at index %d has no name", i), nil)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, errors.New(errors.CatalogInvalid, fmt.Sprintf("duplicate component name %q", d.Name), nil)
		}
		if d.Type == "" {
			d.Type = TypeBackendService
		}
		if ont != nil && d.Domain != DomainUnknown {
			if _, ok := ont.Domain(d.Domain); !ok {
				return nil, errors.New(errors.CatalogInvalid,
					fmt.Sprintf("component %q references unknown domain %q", d.Name, d.Domain), nil)
			}
		}
		c.byName[d.Name] = len(c.components)
		c.components = append(c.components, d)
	}

	return c, nil
}

// Snapshot returns the current component list in insertion order. The slice
// is never mutated after publication; callers may hold it across a
// concurrent Register.
func (c *Catalog) Snapshot() []ComponentDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.components
}

// Get returns the descriptor for a component name.
func (c *Catalog) Get(name string) (ComponentDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byName[name]
	if !ok {
		return ComponentDescriptor{}, false
	}
	return c.components[i], true
}

// InDomain returns all components of the given domain, insertion order.
func (c *Catalog) InDomain(domain string) []ComponentDescriptor {
	snapshot := c.Snapshot()
	var out []ComponentDescriptor
	for _, d := range snapshot {
		if d.Domain == domain {
			out = append(out, d)
		}
	}
	return out
}

// Register appends a component, replacing the published slice so concurrent
// readers keep their snapshot. Registering an existing name is an error.
func (c *Catalog) Register(d ComponentDescriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New(errors.CatalogInvalid, "component has no name", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.byName[d.Name]; dup {
		return errors.New(errors.CatalogInvalid, fmt.Sprintf("component %q already registered", d.Name), nil)
	}
	if d.Type == "" {
		d.Type = TypeBackendService
	}

	next := make([]ComponentDescriptor, len(c.components), len(c.components)+1)
	copy(next, c.components)
	next = append(next, d)

	nextByName := make(map[string]int, len(c.byName)+1)
	for k, v := range c.byName {
		nextByName[k] = v
	}
	nextByName[d.Name] = len(c.components)

	c.components = next
	c.byName = nextByName
	return nil
}

// Len returns the number of registered components.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.components)
}

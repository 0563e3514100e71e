package persona

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"pressroom.app/pressroom/common"
	"pressroom.app/pressroom/internal/model"
)

// Registry is a read-only persona catalog. It is safe for concurrent use
// because nothing mutates it after construction.
type Registry struct {
	personas  map[string]model.Persona
	defaultID string
}

type catalogFile struct {
	Default  string          `yaml:"default"`
	Personas []model.Persona `yaml:"personas"`
}

// New returns a registry holding the built-in personas plus extra.
// Entries in extra replace built-ins with the same id.
func New(extra ...model.Persona) (*Registry, error) {
	r := &Registry{
		personas:  make(map[string]model.Persona),
		defaultID: DefaultID,
	}
	for _, p := range builtins() {
		r.personas[p.ID] = p
	}
	for _, p := range extra {
		if err := r.add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Load builds a registry from the built-ins and, when path is set, a YAML
// catalog file. A catalog may also change the fallback persona.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return New()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona: read %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("persona: %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a YAML persona catalog on top of the built-ins.
func Parse(data []byte) (*Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	r, err := New(file.Personas...)
	if err != nil {
		return nil, err
	}
	if file.Default != "" {
		id, err := common.Keyify(file.Default, "")
		if err != nil {
			return nil, fmt.Errorf("default persona: %w", err)
		}
		if _, ok := r.personas[id]; !ok {
			return nil, fmt.Errorf("default persona %q is not in the catalog", id)
		}
		r.defaultID = id
	}
	return r, nil
}

func (r *Registry) add(p model.Persona) error {
	id, err := common.Keyify(p.ID, p.DisplayName)
	if err != nil {
		return fmt.Errorf("persona id: %w", err)
	}
	p.ID = id
	if p.DisplayName == "" {
		p.DisplayName = id
	}
	if strings.TrimSpace(p.Description) == "" && len(p.ToneRules) == 0 {
		return fmt.Errorf("persona %q needs a description or tone rules", id)
	}
	p.ToneRules = append([]string(nil), p.ToneRules...)
	r.personas[id] = p
	return nil
}

// Get returns the persona for id, or the default persona when id is unknown.
// Ids are matched after normalization, so "Tech Policy" finds tech_policy.
func (r *Registry) Get(id string) model.Persona {
	if key, err := common.Keyify(id, ""); err == nil {
		if p, ok := r.personas[key]; ok {
			return p
		}
	}
	return r.personas[r.defaultID]
}

// Has reports whether id names a catalog entry.
func (r *Registry) Has(id string) bool {
	key, err := common.Keyify(id, "")
	if err != nil {
		return false
	}
	_, ok := r.personas[key]
	return ok
}

func (r *Registry) Default() model.Persona {
	return r.personas[r.defaultID]
}

// List returns every persona sorted by id.
func (r *Registry) List() []model.Persona {
	out := make([]model.Persona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

package templates

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/umlgen/internal/diagram"
)

//go:embed templates.yaml
var embedded []byte

// Store is a read-only mapping from diagram type to example markup.
type Store struct {
	templates map[diagram.Type]string
}

// Default returns the store built from the embedded templates.
func Default() *Store {
	s, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("templates: embedded templates are invalid: %v", err))
	}
	return s
}

// Load reads templates from a YAML file mapping diagram type to markup.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading templates %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing templates %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a store from YAML data.
func Parse(data []byte) (*Store, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no templates defined")
	}
	s := &Store{templates: make(map[diagram.Type]string, len(raw))}
	for name, body := range raw {
		s.templates[diagram.ParseType(name)] = body
	}
	return s, nil
}

// Get returns the example markup for the given type.
func (s *Store) Get(t diagram.Type) (string, bool) {
	body, ok := s.templates[t]
	return body, ok
}

// Types lists the types present in the store: the built-in types first in
// display order, then any extra types alphabetically.
func (s *Store) Types() []diagram.Type {
	var types []diagram.Type
	for _, t := range diagram.Types() {
		if _, ok := s.templates[t]; ok {
			types = append(types, t)
		}
	}
	var extra []diagram.Type
	for t := range s.templates {
		if !t.Known() {
			extra = append(extra, t)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(types, extra...)
}

// All returns a copy of the template mapping keyed by type name.
func (s *Store) All() map[string]string {
	out := make(map[string]string, len(s.templates))
	for t, body := range s.templates {
		out[string(t)] = body
	}
	return out
}

// JSON serializes the templates as a JSON object. Keys are sorted, so the
// output is stable for a given store.
func (s *Store) JSON() string {
	data, err := json.Marshal(s.All())
	if err != nil {
		// A map[string]string always marshals.
		panic(err)
	}
	return string(data)
}

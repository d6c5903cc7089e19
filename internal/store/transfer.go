package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/model"
)

// ExportPrefix starts every export file name.
const ExportPrefix = "shopping-list-export-"

const exportStampLayout = "2006-01-02T15:04:05"

// itemSchema is the shape every element of an imported or stored list must have.
// Extra properties are tolerated.
var itemSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"id", "text", "completed", "createdAt"},
	Properties: map[string]*jsonschema.Schema{
		"id":        {Type: "string"},
		"text":      {Type: "string"},
		"completed": {Type: "boolean"},
		"createdAt": {Type: "string"},
	},
}

var resolvedItemSchema = mustResolve(itemSchema)

func mustResolve(s *jsonschema.Schema) *jsonschema.Resolved {
	r, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("store: item schema: %v", err))
	}
	return r
}

// decodeCollection parses and validates a whole list. Either every element is
// well-formed and ids are unique, or the list is refused as a unit.
func decodeCollection(b []byte) ([]model.Item, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &ImportValidationError{Index: -1, Reason: "not valid JSON: " + err.Error()}
	}
	elems, ok := doc.([]any)
	if !ok {
		return nil, &ImportValidationError{Index: -1, Reason: "expected an array"}
	}
	items := make([]model.Item, 0, len(elems))
	for i, el := range elems {
		m, isObj := el.(map[string]any)
		if !isObj {
			return nil, &ImportValidationError{Index: i, Reason: "expected an object"}
		}
		if err := resolvedItemSchema.Validate(m); err != nil {
			return nil, &ImportValidationError{Index: i, Reason: err.Error()}
		}
		// fields come from the validated map; other keys, whatever their case, are ignored
		items = append(items, model.Item{
			ID:        m["id"].(string),
			Text:      m["text"].(string),
			Completed: m["completed"].(bool),
			CreatedAt: m["createdAt"].(string),
		})
	}

	seen := make(map[string]int, len(items))
	for i, it := range items {
		if first, dup := seen[it.ID]; dup {
			return nil, &ImportValidationError{Index: i, Reason: fmt.Sprintf("duplicate id %q (first at index %d)", it.ID, first)}
		}
		seen[it.ID] = i
	}
	return items, nil
}

// Export renders the current list as indented JSON. An empty list renders as [].
func (s *Store) Export() ([]byte, error) {
	b, err := json.MarshalIndent(s.Items(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: json marshal: %w", err)
	}
	return b, nil
}

// ExportFile writes Export's output to dir under a timestamped name and returns its path.
func (s *Store) ExportFile(dir string) (string, error) {
	b, err := s.Export()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: mkdir: %w", err)
	}
	name := ExportPrefix + s.now().UTC().Format(exportStampLayout) + ".json"
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return "", fmt.Errorf("export: write file: %w", err)
	}
	s.log.Debug("list exported", zap.String("path", p), zap.Int("items", len(s.items)))
	return p, nil
}

// Import replaces the whole list with data after validating it.
// A rejected import returns an *ImportValidationError and leaves the list untouched.
func (s *Store) Import(data []byte) ([]model.Item, error) {
	items, err := decodeCollection(data)
	if err != nil {
		s.log.Info("import rejected", zap.Error(err))
		return nil, err
	}
	s.ensureLoaded()
	return s.commit("import", items)
}

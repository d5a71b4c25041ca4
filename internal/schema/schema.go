// Package schema generates JSON Schemas for the persisted digest store
// formats. The stores are documented as safe to hand-edit between runs;
// the schemas make editing them by hand checkable.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/tatoflam/weave-digest/internal/digest"
)

var stores = map[string]any{
	"archive":        digest.RegularDigest{},
	"shadow":         digest.ShadowStoreDoc{},
	"grand":          digest.GrandDigest{},
	"last-processed": map[string]digest.LastProcessedRecord{},
	"provisional":    digest.ProvisionalFile{},
}

// Names lists the known store formats, sorted.
func Names() []string {
	names := make([]string, 0, len(stores))
	for name := range stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// For reflects the JSON Schema for one store format.
func For(name string) (*jsonschema.Schema, error) {
	v, ok := stores[name]
	if !ok {
		return nil, fmt.Errorf("unknown store format %q (known: %v)", name, Names())
	}
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	return reflector.Reflect(v), nil
}

// MarshalIndent renders one store format's schema as indented JSON.
func MarshalIndent(name string) ([]byte, error) {
	s, err := For(name)
	if err != nil {
		return nil, err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return b, nil
}

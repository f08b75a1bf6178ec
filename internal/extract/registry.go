package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrEmptyRegistry is fatal at startup: resolution is meaningless without at
// least one known supplier.
var ErrEmptyRegistry = errors.New("supplier registry is empty")

// SupplierEntry is one known invoice-issuing entity. RegionAliases maps a
// region keyword found in document text to the code of that regional variant.
type SupplierEntry struct {
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	RegionAliases map[string]string `json:"region_aliases,omitempty"`
}

// Registry is the static table of known suppliers. It is loaded once at
// process start and is read-only afterward, so it may be shared freely.
type Registry struct {
	entries []SupplierEntry
	byCode  map[string]SupplierEntry
}

// NewRegistry builds a registry from the given entries, preserving their
// declaration order. Resolution is order-dependent on that order.
func NewRegistry(entries []SupplierEntry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyRegistry
	}
	byCode := make(map[string]SupplierEntry, len(entries))
	for _, e := range entries {
		if e.Code == "" || e.Name == "" {
			return nil, fmt.Errorf("registry entry %q/%q: code and name are required", e.Code, e.Name)
		}
		if _, dup := byCode[e.Code]; dup {
			return nil, fmt.Errorf("registry entry %q: duplicate code", e.Code)
		}
		byCode[e.Code] = e
	}
	return &Registry{entries: entries, byCode: byCode}, nil
}

// LoadRegistry reads a registry from a JSON file holding an array of entries.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}
	var entries []SupplierEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing registry file: %w", err)
	}
	return NewRegistry(entries)
}

// Entries returns the registry entries in declaration order. Callers must not
// mutate the returned slice.
func (r *Registry) Entries() []SupplierEntry {
	return r.entries
}

// ByCode looks up an entry by its supplier code.
func (r *Registry) ByCode(code string) (SupplierEntry, bool) {
	e, ok := r.byCode[code]
	return e, ok
}

// NameFor returns the canonical display name for a code, or the empty string
// when the code is not registered.
func (r *Registry) NameFor(code string) string {
	return r.byCode[code].Name
}

// DefaultRegistry returns the built-in supplier table. Regional variants are
// listed after their parent entry so the name scan prefers the parent; region
// selection itself happens in the resolver's region tier.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry([]SupplierEntry{
		{Code: "TRUSC", Name: "Trusc Pty ltd"},
		{Code: "ICDLSA", Name: "ICDL OF SOUTH AFRICA"},
		{Code: "MUSTEK", Name: "Mustek Limited"},
		{Code: "THEEW", Name: "Theewaterskloof Municipality"},
		{Code: "NASCPT", Name: "Nashua Cape Town"},
		{Code: "TRUPAT", Name: "Trust Patrol"},
		{Code: "MATZI", Name: "Matzikama Municipality", RegionAliases: map[string]string{
			"Bitterfontein": "MATBIT",
			"Klawer":        "MATKLA",
			"Rietpoort":     "MATRIE",
			"Vanrhynsdorp":  "MATVAN",
			"Vredendal":     "MATVRE",
			"Doringbaai":    "MATZDO",
		}},
		{Code: "MATBIT", Name: "Matzikama Municipality - Bitterfontein"},
		{Code: "MATKLA", Name: "Matzikama Municipality - Klawer"},
		{Code: "MATRIE", Name: "Matzikama Municipality - Rietpoort"},
		{Code: "MATVAN", Name: "Matzikama Municipality - Vanrhynsdorp"},
		{Code: "MATVRE", Name: "Matzikama Municipality - Vredendal"},
		{Code: "MATZDO", Name: "Matzikama Municipality - Doringbaai"},
		{Code: "WISPEN", Name: "Wispernet Internet Services", RegionAliases: map[string]string{
			"Heidelberg":      "WISHEI",
			"Melkhoutfontein": "WISMEL",
			"Dysselsdorp":     "WISP4",
			"Bridgton":        "WISPER",
		}},
		{Code: "WISHEI", Name: "Wispernet Heidelberg"},
		{Code: "WISMEL", Name: "Wispernet Melkhoutfontein"},
		{Code: "WISP4", Name: "Wispernet Dysselsdorp"},
		{Code: "WISPER", Name: "Wispernet Bridgton"},
	})
	if err != nil {
		// The built-in table is validated by tests; reaching this is a bug.
		panic(err)
	}
	return reg
}

// Package emission holds the category to emission-factor table used to turn
// recycled item counts into kilograms and CO2 saved.
package emission

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"ecoledger/internal/gateway/entity"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed default_table.yaml
var defaultTableYAML []byte

// Table is an immutable category lookup. Keys are lowercased at load time.
type Table struct {
	factors map[string]entity.EmissionFactor
	keys    []string
}

// Normalize lowercases and trims a category name. It is Unicode aware, so
// "Plastic", "PLASTIC" and " plastic " all map to the same key.
func Normalize(category string) string {
	// cases.Caser carries state and is not safe for concurrent use.
	return cases.Lower(language.Und).String(strings.TrimSpace(category))
}

// Default returns the table compiled into the binary.
func Default() *Table {
	t, err := Parse(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("emission: embedded table is invalid: %v", err))
	}
	return t
}

// Load reads a YAML (or JSON) table from path. An empty path yields Default.
func Load(path string) (*Table, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read emission table %s: %w", path, err)
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("emission table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a mapping of category -> {avg_weight, ef_recycle}. JSON input
// is accepted since it is valid YAML.
func Parse(raw []byte) (*Table, error) {
	var doc map[string]entity.EmissionFactor
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	factors := make([]entity.EmissionFactor, 0, len(doc))
	for category, f := range doc {
		f.Category = category
		factors = append(factors, f)
	}
	return New(factors)
}

// New validates factors and builds a Table.
func New(factors []entity.EmissionFactor) (*Table, error) {
	if len(factors) == 0 {
		return nil, fmt.Errorf("table is empty")
	}
	t := &Table{
		factors: make(map[string]entity.EmissionFactor, len(factors)),
		keys:    make([]string, 0, len(factors)),
	}
	for _, f := range factors {
		key := Normalize(f.Category)
		if key == "" {
			return nil, fmt.Errorf("empty category name")
		}
		if _, dup := t.factors[key]; dup {
			return nil, fmt.Errorf("duplicate category %q", key)
		}
		if !validNumber(f.AverageWeight) || f.AverageWeight == 0 {
			return nil, fmt.Errorf("category %q: avg_weight must be a positive number", key)
		}
		if !validNumber(f.RecycleFactor) {
			return nil, fmt.Errorf("category %q: ef_recycle must be a non-negative number", key)
		}
		f.Category = key
		t.factors[key] = f
		t.keys = append(t.keys, key)
	}
	sort.Strings(t.keys)
	return t, nil
}

func validNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Lookup finds the factor for category after normalization.
func (t *Table) Lookup(category string) (entity.EmissionFactor, bool) {
	if t == nil {
		return entity.EmissionFactor{}, false
	}
	f, ok := t.factors[Normalize(category)]
	return f, ok
}

// Categories lists the known categories in ascending order.
func (t *Table) Categories() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.keys...)
}

// Factors lists every factor ordered by category.
func (t *Table) Factors() []entity.EmissionFactor {
	if t == nil {
		return nil
	}
	out := make([]entity.EmissionFactor, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.factors[k])
	}
	return out
}

// Len reports the number of categories.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

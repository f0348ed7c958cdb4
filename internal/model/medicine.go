package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// MedicineIndex maps exact product names to the internal medicine ID used
// by downstream reconciliation. Unknown names map to the empty string.
type MedicineIndex struct {
	ids map[string]string
}

// NewMedicineIndex builds an index from an explicit mapping.
func NewMedicineIndex(ids map[string]string) *MedicineIndex {
	if ids == nil {
		ids = map[string]string{}
	}
	return &MedicineIndex{ids: ids}
}

// LoadMedicineIndex reads a YAML file of product-name: id pairs.
func LoadMedicineIndex(path string) (*MedicineIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "medicine: read %s", path)
	}

	ids := map[string]string{}
	if err := yaml.Unmarshal(raw, &ids); err != nil {
		return nil, eris.Wrapf(err, "medicine: parse %s", path)
	}
	return NewMedicineIndex(ids), nil
}

// Lookup returns the ID for an exact product name, or "" when unknown.
// A nil index is usable and knows nothing.
func (m *MedicineIndex) Lookup(name string) string {
	if m == nil {
		return ""
	}
	return m.ids[name]
}

// Len returns the number of known products.
func (m *MedicineIndex) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ids)
}

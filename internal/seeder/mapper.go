package seeder

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MappingCategory namespaces identifier mappings. The code prefix is the
// upper-cased first two characters of the category name.
type MappingCategory string

const (
	MapDoctor        MappingCategory = "DoctorName"
	MapSpecialty     MappingCategory = "SpecialtyName"
	MapSubSpecialty  MappingCategory = "SubSpecialtyName"
	MapFacility      MappingCategory = "FacilityDesc"
	MapProcedureCode MappingCategory = "PrimaryProcedureCode"
	MapAccommodation MappingCategory = "AccommodationDesc"
	MapUnit          MappingCategory = "Unit"
)

type mappingKey struct {
	category MappingCategory
	label    string
}

// IdentifierMapper assigns short synthetic codes to descriptive labels. A
// label keeps its code for the lifetime of the mapper. Codes are a two letter
// prefix plus a random four digit suffix, so distinct labels may collide.
type IdentifierMapper struct {
	mu    sync.Mutex
	rand  *rand.Rand
	upper cases.Caser
	codes map[mappingKey]string
	order []mappingKey
}

func NewIdentifierMapper(seed uint64) *IdentifierMapper {
	return &IdentifierMapper{
		rand:  rand.New(rand.NewPCG(seed, seed^pcgStream)),
		upper: cases.Upper(language.Und),
		codes: make(map[mappingKey]string),
	}
}

// GetOrCreate returns the code for label, creating it on first use.
func (m *IdentifierMapper) GetOrCreate(category MappingCategory, label string) string {
	key := mappingKey{category: category, label: label}

	m.mu.Lock()
	defer m.mu.Unlock()

	if code, ok := m.codes[key]; ok {
		return code
	}

	code := fmt.Sprintf("%s%d", m.prefix(category), 1000+m.rand.IntN(9000))
	m.codes[key] = code
	m.order = append(m.order, key)
	return code
}

// Lookup returns an existing code without creating one.
func (m *IdentifierMapper) Lookup(category MappingCategory, label string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[mappingKey{category: category, label: label}]
	return code, ok
}

func (m *IdentifierMapper) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes)
}

// Mapping is one label → code entry.
type Mapping struct {
	Category MappingCategory
	Label    string
	Code     string
}

// Mappings lists entries in creation order.
func (m *IdentifierMapper) Mappings() []Mapping {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Mapping, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, Mapping{Category: key.category, Label: key.label, Code: m.codes[key]})
	}
	return out
}

func (m *IdentifierMapper) prefix(category MappingCategory) string {
	runes := []rune(string(category))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return m.upper.String(string(runes))
}

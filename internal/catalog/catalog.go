// Package catalog holds the fixed lookup lists the record generator draws from.
// Every list has a built-in default and can be replaced from a YAML file.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	CategoryNRFC = "NRFC"

	StatusBooked    = "B"
	StatusCancelled = "C"
	StatusWaiting   = "W"
	StatusRemoved   = "R"

	FallbackProcedure = "General procedure"
	UnknownStatus     = "Unknown"
)

type Accommodation struct {
	Code string `yaml:"code" json:"code"`
	Desc string `yaml:"desc" json:"desc"`
}

type Catalog struct {
	ProcedureTypes      map[string][]string `yaml:"procedure_types"`
	FallbackProcedure   string              `yaml:"fallback_procedure"`
	NRFCReasons         []string            `yaml:"nrfc_reasons"`
	NRFSComments        []string            `yaml:"nrfs_comments"`
	Comments            []string            `yaml:"comments"`
	Accommodations      []Accommodation     `yaml:"accommodations"`
	StatusLabels        map[string]string   `yaml:"status_labels"`
	AllowedCategories   []string            `yaml:"allowed_categories"`
	ShortWaitCategories []string            `yaml:"short_wait_categories"`

	allowed   map[string]bool
	shortWait map[string]bool
}

func Default() *Catalog {
	c := &Catalog{
		ProcedureTypes: map[string][]string{
			"Surgery":        {"Appendectomy", "Cholecystectomy", "Hip Replacement"},
			"Reconstructive": {"Skin graft", "Breast reconstruction", "Cleft palate repair"},
			"Diagnostic":     {"Colonoscopy", "MRI Brain Scan", "CT Chest"},
			"Preventive":     {"Vaccination", "Routine check-up", "Dental cleaning"},
		},
		FallbackProcedure: FallbackProcedure,
		NRFCReasons: []string{
			"Awaiting specialist clearance",
			"Needs further diagnostic testing",
			"Patient request for delay",
			"Pending insurance approval",
			"Awaiting rehab scheduling",
		},
		NRFSComments: []string{
			"Pending pre-operative assessment by anesthesia team.",
			"Patient advised to reduce blood pressure before surgery.",
			"Theatre scheduling not confirmed due to equipment shortage.",
			"Awaiting completion of cardiac stress testing.",
			"High INR value, anticoagulant adjustment required.",
			"Infection detected during pre-op screening.",
			"Surgeon not available on planned procedure date.",
			"Need to coordinate with multiple specialties before proceeding.",
			"Final clearance pending from allied health.",
			"Patient requested delay to arrange support post-discharge.",
		},
		Comments: []string{
			"Patient contacted, waiting for confirmation.",
			"Pending follow-up from GP.",
			"Awaiting blood test report.",
			"No recent updates. Scheduled for next month.",
			"Call placed to confirm availability.",
		},
		Accommodations: []Accommodation{
			{Code: "P", Desc: "Private"},
			{Code: "SP", Desc: "Shared Private"},
			{Code: "W", Desc: "Ward"},
		},
		StatusLabels: map[string]string{
			StatusBooked:    "Booked",
			StatusCancelled: "Cancelled",
			StatusWaiting:   "Waiting",
			StatusRemoved:   "Removed",
		},
		AllowedCategories:   []string{"1", "2", "3", "4", "5", "6", "9", "E", CategoryNRFC},
		ShortWaitCategories: []string{"E", "1", "2", "3"},
	}
	c.index()
	return c
}

// Load returns the default catalog with any lists present in the YAML file
// replacing their defaults. An empty path yields the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	c.merge(&override)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	c.index()
	return c, nil
}

func (c *Catalog) merge(o *Catalog) {
	if len(o.ProcedureTypes) > 0 {
		c.ProcedureTypes = o.ProcedureTypes
	}
	if o.FallbackProcedure != "" {
		c.FallbackProcedure = o.FallbackProcedure
	}
	if len(o.NRFCReasons) > 0 {
		c.NRFCReasons = o.NRFCReasons
	}
	if len(o.NRFSComments) > 0 {
		c.NRFSComments = o.NRFSComments
	}
	if len(o.Comments) > 0 {
		c.Comments = o.Comments
	}
	if len(o.Accommodations) > 0 {
		c.Accommodations = o.Accommodations
	}
	for code, label := range o.StatusLabels {
		c.StatusLabels[code] = label
	}
	if len(o.AllowedCategories) > 0 {
		c.AllowedCategories = o.AllowedCategories
	}
	if len(o.ShortWaitCategories) > 0 {
		c.ShortWaitCategories = o.ShortWaitCategories
	}
}

func (c *Catalog) Validate() error {
	if len(c.NRFCReasons) == 0 {
		return fmt.Errorf("nrfc_reasons cannot be empty")
	}
	if len(c.NRFSComments) == 0 {
		return fmt.Errorf("nrfs_comments cannot be empty")
	}
	if len(c.Comments) == 0 {
		return fmt.Errorf("comments cannot be empty")
	}
	if len(c.Accommodations) == 0 {
		return fmt.Errorf("accommodations cannot be empty")
	}
	// an empty code is filled from the identifier mapper at generation time
	for i, a := range c.Accommodations {
		if a.Desc == "" {
			return fmt.Errorf("accommodation %d needs a desc", i)
		}
	}
	for procType, descs := range c.ProcedureTypes {
		if len(descs) == 0 {
			return fmt.Errorf("procedure type %q has no descriptions", procType)
		}
	}
	hasNRFC := false
	for _, cat := range c.AllowedCategories {
		if cat == CategoryNRFC {
			hasNRFC = true
		}
	}
	if !hasNRFC {
		return fmt.Errorf("allowed_categories must include %s", CategoryNRFC)
	}
	return nil
}

func (c *Catalog) index() {
	c.allowed = make(map[string]bool, len(c.AllowedCategories))
	for _, cat := range c.AllowedCategories {
		c.allowed[cat] = true
	}
	c.shortWait = make(map[string]bool, len(c.ShortWaitCategories))
	for _, cat := range c.ShortWaitCategories {
		c.shortWait[cat] = true
	}
}

// CoerceCategory returns the category unchanged when it is allowed and NRFC
// otherwise. The second result is false when coercion happened.
func (c *Catalog) CoerceCategory(raw string, present bool) (string, bool) {
	if present && c.allowed[raw] {
		return raw, true
	}
	return CategoryNRFC, false
}

// IsShortWait reports whether category is one of the short-wait categories.
func (c *Catalog) IsShortWait(category string) bool {
	return c.shortWait[category]
}

// StatusCode is R for NRFC, B for short-wait categories and W for the rest.
func (c *Catalog) StatusCode(category string) string {
	switch {
	case category == CategoryNRFC:
		return StatusRemoved
	case c.IsShortWait(category):
		return StatusBooked
	default:
		return StatusWaiting
	}
}

func (c *Catalog) StatusLabel(code string) string {
	if label, ok := c.StatusLabels[code]; ok {
		return label
	}
	return UnknownStatus
}

func (c *Catalog) WaitGroup(category string) string {
	switch {
	case category == CategoryNRFC:
		return "NRFC Group"
	case c.IsShortWait(category):
		return "Short Wait"
	default:
		return "Long Wait"
	}
}

// Procedures returns the description list for a procedure type, falling back
// to the generic label for unknown types.
func (c *Catalog) Procedures(procType string) []string {
	if descs, ok := c.ProcedureTypes[procType]; ok && len(descs) > 0 {
		return descs
	}
	return []string{c.FallbackProcedure}
}

func (c *Catalog) AccommodationByDesc(desc string) (Accommodation, bool) {
	for _, a := range c.Accommodations {
		if a.Desc == desc {
			return a, true
		}
	}
	return Accommodation{}, false
}

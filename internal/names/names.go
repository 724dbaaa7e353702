// Package names builds reference lists of specialty, sub-specialty and doctor
// names used to author cohort files.
package names

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

const (
	DefaultSpecialties    = 35
	DefaultSubSpecialties = 55
	DefaultDoctors        = 288
)

var specialties = []string{
	"Cardiology", "Neurology", "Orthopedics", "Dermatology", "Pediatrics",
	"Oncology", "Gastroenterology", "Psychiatry", "Endocrinology", "Ophthalmology",
	"Rheumatology", "Pulmonology", "Nephrology", "Hematology", "Infectious Disease",
	"Allergy and Immunology", "Anesthesiology", "General Surgery", "Plastic Surgery",
	"Vascular Surgery", "Emergency Medicine", "Internal Medicine", "Family Medicine",
	"Geriatrics", "Obstetrics and Gynecology", "Pathology", "Radiology", "Urology",
	"Otolaryngology", "Palliative Care", "Sports Medicine", "Pain Management",
	"Rehabilitation Medicine", "Genetics", "Occupational Medicine",
}

var subSpecialtyPrefixes = []string{
	"Pediatric", "Geriatric", "Interventional", "Surgical",
	"Diagnostic", "Clinical", "Advanced", "Acute Care", "Preventive",
	"Emergency", "Reconstructive",
}

type Options struct {
	Specialties    int
	SubSpecialties int
	Doctors        int
	Seed           uint64 // 0 picks a random seed
}

type Names struct {
	Specialties    []string
	SubSpecialties []string
	Doctors        []string
}

// DefaultOptions returns the list sizes of the original reference workbook.
func DefaultOptions() Options {
	return Options{
		Specialties:    DefaultSpecialties,
		SubSpecialties: DefaultSubSpecialties,
		Doctors:        DefaultDoctors,
	}
}

// applyDefaults only fills the seed. Zero counts are honoured as empty lists.
func (o *Options) applyDefaults() {
	if o.Seed == 0 {
		o.Seed = rand.Uint64() | 1
	}
}

func (o Options) Validate() error {
	if o.Specialties < 1 || o.Specialties > len(specialties) {
		return fmt.Errorf("specialties must be between 1 and %d", len(specialties))
	}
	if limit := o.Specialties * len(subSpecialtyPrefixes); o.SubSpecialties < 0 || o.SubSpecialties > limit {
		return fmt.Errorf("sub-specialties must be between 0 and %d for %d specialties", limit, o.Specialties)
	}
	if o.Doctors < 0 {
		return fmt.Errorf("doctors cannot be negative")
	}
	return nil
}

// Generate samples distinct specialties, builds distinct sub-specialties by
// prefixing a sampled specialty, and draws doctor names. Doctor names may
// repeat.
func Generate(opts Options) (*Names, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed>>1|1))
	faker := gofakeit.New(opts.Seed)

	out := &Names{
		Specialties:    make([]string, 0, opts.Specialties),
		SubSpecialties: make([]string, 0, opts.SubSpecialties),
		Doctors:        make([]string, 0, opts.Doctors),
	}

	for _, i := range r.Perm(len(specialties))[:opts.Specialties] {
		out.Specialties = append(out.Specialties, specialties[i])
	}

	// draw from the full cross product so the loop always terminates
	combos := make([]string, 0, len(out.Specialties)*len(subSpecialtyPrefixes))
	for _, s := range out.Specialties {
		for _, p := range subSpecialtyPrefixes {
			combos = append(combos, p+" "+s)
		}
	}
	for _, i := range r.Perm(len(combos))[:opts.SubSpecialties] {
		out.SubSpecialties = append(out.SubSpecialties, combos[i])
	}

	for i := 0; i < opts.Doctors; i++ {
		out.Doctors = append(out.Doctors, strings.Join([]string{"Dr.", faker.FirstName(), faker.LastName()}, " "))
	}
	return out, nil
}

package seeder

import (
	"fmt"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
)

const (
	LocaleAU = "en_AU"
	LocaleUS = "en_US"

	GenderMale   = "Male"
	GenderFemale = "Female"
)

var (
	maleFirstNames = []string{
		"Jack", "Oliver", "William", "Noah", "Thomas", "James", "Lucas", "Henry", "Charlie", "Ethan",
		"Liam", "Samuel", "Harrison", "Lachlan", "Cooper", "Archie", "Mason", "Leo", "Hudson", "Riley",
		"Daniel", "Matthew", "Joshua", "Benjamin", "Ryan", "Nathan", "Luke", "Michael", "David", "Peter",
		"Andrew", "Mark", "Paul", "Stephen", "Robert", "John", "Christopher", "Anthony", "Graham", "Ian",
	}

	femaleFirstNames = []string{
		"Charlotte", "Olivia", "Amelia", "Isla", "Mia", "Ava", "Grace", "Chloe", "Willow", "Matilda",
		"Ella", "Sophie", "Ruby", "Zoe", "Evie", "Harper", "Sienna", "Emily", "Lily", "Isabella",
		"Jessica", "Sarah", "Emma", "Hannah", "Laura", "Rebecca", "Rachel", "Megan", "Kate", "Lauren",
		"Michelle", "Karen", "Susan", "Margaret", "Helen", "Julie", "Catherine", "Deborah", "Lisa", "Fiona",
	}

	auSuburbs = []string{
		"Parramatta", "Bondi", "Chatswood", "Penrith", "Liverpool", "Newtown", "Manly", "Hornsby",
		"Fitzroy", "Carlton", "Brunswick", "St Kilda", "Frankston", "Geelong", "Ballarat", "Bendigo",
		"Fortitude Valley", "Toowong", "Southport", "Ipswich", "Toowoomba", "Cairns", "Townsville",
		"Fremantle", "Joondalup", "Subiaco", "Glenelg", "Norwood", "Sandy Bay", "Launceston",
		"Belconnen", "Woden", "Darwin City", "Palmerston", "Wollongong", "Newcastle", "Gosford",
	}

	auPhoneFormats = []string{
		"04## ### ###",
		"+61 4## ### ###",
		"(02) #### ####",
		"(03) #### ####",
		"(07) #### ####",
		"(08) #### ####",
		"02 #### ####",
	}

	yesNo = []string{"Yes", "No"}
)

// FieldSampler produces plausible values for semantic field types. It is not
// safe for concurrent use; the driver gives each cohort its own sampler.
type FieldSampler struct {
	rand   *rand.Rand
	faker  *gofakeit.Faker
	locale string
}

func NewFieldSampler(seed uint64, locale string) *FieldSampler {
	if locale == "" {
		locale = LocaleAU
	}
	return &FieldSampler{
		rand:   rand.New(rand.NewPCG(seed, seed^pcgStream)),
		faker:  gofakeit.New(seed),
		locale: locale,
	}
}

func (s *FieldSampler) Gender() string {
	if s.rand.IntN(2) == 0 {
		return GenderMale
	}
	return GenderFemale
}

// FirstName draws a given name matching the gender; anything but Male is
// treated as Female.
func (s *FieldSampler) FirstName(gender string) string {
	if gender == GenderMale {
		return pick(s.rand, maleFirstNames)
	}
	return pick(s.rand, femaleFirstNames)
}

func (s *FieldSampler) Surname() string {
	return s.faker.LastName()
}

func (s *FieldSampler) City() string {
	if s.locale == LocaleUS {
		return s.faker.City()
	}
	return pick(s.rand, auSuburbs)
}

func (s *FieldSampler) PostCode() string {
	if s.locale == LocaleUS {
		return s.faker.Zip()
	}
	return fmt.Sprintf("%04d", s.faker.Number(200, 9999))
}

func (s *FieldSampler) Phone() string {
	if s.locale == LocaleUS {
		return s.faker.PhoneFormatted()
	}
	return s.faker.Numerify(pick(s.rand, auPhoneFormats))
}

// Sentence returns a short lorem sentence of two to four words.
func (s *FieldSampler) Sentence() string {
	return s.faker.LoremIpsumSentence(2 + s.rand.IntN(3))
}

func (s *FieldSampler) Word() string {
	return s.faker.Word()
}

// Token returns an n character alphanumeric string.
func (s *FieldSampler) Token(n int) string {
	return s.faker.Password(true, true, true, false, false, n)
}

func (s *FieldSampler) YesNo() string {
	return pick(s.rand, yesNo)
}

func (s *FieldSampler) Pick(options []string) string {
	return pick(s.rand, options)
}

func pick(r *rand.Rand, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[r.IntN(len(options))]
}

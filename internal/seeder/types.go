package seeder

import (
	"time"

	"github.com/rs/zerolog"
)

// pcgStream is XORed into seeds to derive the second PCG word.
const pcgStream = 0x9e3779b97f4a7c15

type SeedConfig struct {
	Seed     uint64           // 0 picks a random seed
	Workers  int              // cohort rows expanded in parallel
	Locale   string           // en_AU or en_US
	Now      func() time.Time // generation clock, time.Now when nil
	Logger   zerolog.Logger
	Progress func(done, total int) // called serially after each cohort row
}

// Stats summarises a finished run.
type Stats struct {
	Seed              uint64
	Cohorts           int
	Records           int
	CoercedCategories int
	Mappings          int
	Duration          time.Duration
}

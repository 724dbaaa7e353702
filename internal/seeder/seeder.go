package seeder

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/catalog"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// Seeder expands cohort rows into synthetic patient records.
type Seeder struct {
	plan    *Plan
	catalog *catalog.Catalog
	config  SeedConfig
	mapper  *IdentifierMapper
	stats   Stats
}

func NewSeeder(columns *types.ColumnSet, cat *catalog.Catalog, cfg SeedConfig) (*Seeder, error) {
	if len(columns.Columns) == 0 {
		return nil, fmt.Errorf("column specification is empty")
	}

	plan, err := NewPlan(columns)
	if err != nil {
		return nil, err
	}

	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64() | 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Seeder{
		plan:    plan,
		catalog: cat,
		config:  cfg,
		mapper:  NewIdentifierMapper(deriveSeed(cfg.Seed, "mapper")),
		stats:   Stats{Seed: cfg.Seed},
	}, nil
}

func (s *Seeder) Plan() *Plan {
	return s.plan
}

func (s *Seeder) Mapper() *IdentifierMapper {
	return s.mapper
}

func (s *Seeder) Stats() Stats {
	return s.stats
}

// Generate expands every cohort row. Patient counters are assigned from
// cohort offsets, so the output is in cohort order with strictly increasing
// counters regardless of the worker count. Cancellation is observed between
// cohort rows.
func (s *Seeder) Generate(ctx context.Context, cohorts []types.CohortRow) (*types.Table, error) {
	start := time.Now()
	logger := s.config.Logger

	offsets := make([]int, len(cohorts))
	total := 0
	for i, c := range cohorts {
		offsets[i] = total
		total += c.RecordCount
	}

	eng := newEngine(s.plan, s.catalog, s.mapper, s.config.Now())
	results := make([][]types.Record, len(cohorts))

	var (
		progressMu sync.Mutex
		done       int
		coerced    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := range cohorts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			cc, ok := s.cohortContext(&cohorts[i], i)
			rows := make([]types.Record, cohorts[i].RecordCount)
			for k := range rows {
				rows[k] = eng.derive(cc, offsets[i]+k)
			}
			results[i] = rows

			progressMu.Lock()
			defer progressMu.Unlock()
			done++
			if !ok {
				coerced++
			}
			if s.config.Progress != nil {
				s.config.Progress(done, len(cohorts))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generation aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation aborted: %w", err)
	}

	table := &types.Table{
		Columns: s.plan.Columns.Names(),
		Rows:    make([]types.Record, 0, total),
	}
	for _, rows := range results {
		table.Rows = append(table.Rows, rows...)
	}

	s.stats.Cohorts = len(cohorts)
	s.stats.Records = len(table.Rows)
	s.stats.CoercedCategories = coerced
	s.stats.Mappings = s.mapper.Len()
	s.stats.Duration = time.Since(start)

	logger.Debug().
		Int("cohorts", s.stats.Cohorts).
		Int("records", s.stats.Records).
		Int("mappings", s.stats.Mappings).
		Dur("elapsed", s.stats.Duration).
		Msg("generation finished")

	return table, nil
}

// cohortContext seeds the cohort's random sources from the run seed and the
// cohort index and coerces its category. ok is false when the category had
// to be coerced.
func (s *Seeder) cohortContext(c *types.CohortRow, index int) (*cohortContext, bool) {
	seed := deriveSeed(s.config.Seed, fmt.Sprintf("cohort/%d", index))

	category, valid := s.catalog.CoerceCategory(c.Category, c.HasCategory)
	if !valid {
		s.config.Logger.Warn().
			Int("line", c.Line).
			Str("category", c.Category).
			Msg("category outside the allowed set, treating as NRFC")
	}

	return &cohortContext{
		cohort:   c,
		category: category,
		rand:     rand.New(rand.NewPCG(seed, seed^pcgStream)),
		fields:   NewFieldSampler(seed, s.config.Locale),
	}, valid
}

func deriveSeed(base uint64, label string) uint64 {
	buf := make([]byte, 8, 8+len(label))
	binary.LittleEndian.PutUint64(buf, base)
	buf = append(buf, label...)
	return xxh3.Hash(buf)
}

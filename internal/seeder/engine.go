package seeder

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/catalog"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

// Step is one column of the plan together with the rule that derives it.
type Step struct {
	Column   *types.ColumnSpec
	Rule     Rule
	Fallback bool
}

// Plan is the column specification resolved into rules and sorted into an
// order where every rule runs after the columns it reads.
type Plan struct {
	Columns *types.ColumnSet
	Steps   []Step
}

func NewPlan(columns *types.ColumnSet) (*Plan, error) {
	graph := NewDependencyGraph()
	rules := make(map[string]Step, len(columns.Columns))

	for _, col := range columns.Columns {
		step := Step{Column: col}
		if rule, ok := registry[col.Name]; ok {
			step.Rule = rule
		} else {
			step.Rule = fallbackRule(col)
			step.Fallback = true
		}
		rules[col.Name] = step
		graph.AddColumn(col.Name, step.Rule.Deps)
	}

	order, err := graph.BuildEvaluationOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluation order: %w", err)
	}

	plan := &Plan{Columns: columns, Steps: make([]Step, 0, len(order))}
	for _, name := range order {
		plan.Steps = append(plan.Steps, rules[name])
	}
	return plan, nil
}

// procedureCache pins one description per procedure type for the whole run.
type procedureCache struct {
	mu    sync.Mutex
	descs map[string]string
}

func (c *procedureCache) resolve(procType string, cat *catalog.Catalog, r *rand.Rand) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if desc, ok := c.descs[procType]; ok {
		return desc
	}
	desc := pick(r, cat.Procedures(procType))
	c.descs[procType] = desc
	return desc
}

// engine holds the state shared by every record of a run.
type engine struct {
	plan       *Plan
	catalog    *catalog.Catalog
	mapper     *IdentifierMapper
	procedures *procedureCache
	now        time.Time
}

func newEngine(plan *Plan, cat *catalog.Catalog, mapper *IdentifierMapper, now time.Time) *engine {
	return &engine{
		plan:       plan,
		catalog:    cat,
		mapper:     mapper,
		procedures: &procedureCache{descs: make(map[string]string)},
		now:        now,
	}
}

// cohortContext carries what every record of one cohort row shares.
type cohortContext struct {
	cohort   *types.CohortRow
	category string
	rand     *rand.Rand
	fields   *FieldSampler
}

type recordContext struct {
	*engine
	*cohortContext

	counter int
	gender  string
	record  types.Record

	accommodationDrawn bool
	accommodation      *catalog.Accommodation
}

// derive builds one record. Gender is fixed before any column is evaluated.
func (e *engine) derive(cc *cohortContext, counter int) types.Record {
	rc := &recordContext{
		engine:        e,
		cohortContext: cc,
		counter:       counter,
		gender:        cc.fields.Gender(),
		record:        make(types.Record, len(e.plan.Steps)),
	}

	for _, step := range e.plan.Steps {
		value := step.Rule.Derive(rc, step.Column)
		if !step.Rule.Joint {
			value = ApplyNull(rc.rand, value, step.Column.NullPercentage)
		}
		rc.record[step.Column.Name] = value
	}
	return rc.record
}

func (rc *recordContext) today() time.Time {
	y, m, d := rc.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, rc.now.Location())
}

func (rc *recordContext) isNRFC() bool {
	return rc.category == catalog.CategoryNRFC
}

// lookup returns a sibling value and whether that column is part of the plan.
func (rc *recordContext) lookup(name string) (interface{}, bool) {
	if !rc.plan.Columns.Has(name) {
		return nil, false
	}
	return rc.record[name], true
}

// status decodes the record's status code, or the category's own code when
// the status code column is not generated.
func (rc *recordContext) status() string {
	v, inPlan := rc.lookup(ColCurrentStatusCode)
	if !inPlan {
		return rc.catalog.StatusLabel(rc.catalog.StatusCode(rc.category))
	}
	code, _ := v.(string)
	return rc.catalog.StatusLabel(code)
}

func (rc *recordContext) procedureDesc() string {
	return rc.procedures.resolve(rc.cohort.ProcedureType, rc.catalog, rc.rand)
}

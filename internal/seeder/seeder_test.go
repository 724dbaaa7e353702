package seeder

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/catalog"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

func columns(names ...string) *types.ColumnSet {
	specs := make([]*types.ColumnSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, &types.ColumnSpec{Name: name})
	}
	return types.NewColumnSet(specs)
}

func withNull(set *types.ColumnSet, pct float64) *types.ColumnSet {
	for _, col := range set.Columns {
		col.NullPercentage = pct
	}
	return set
}

func intPtr(v int) *int { return &v }

func cohort(category string, age *int, count int) types.CohortRow {
	return types.CohortRow{
		Line:             2,
		ExtractDate:      "2025-06-01",
		District:         "Metro North",
		FacilityDesc:     "General Hospital",
		SpecialtyName:    "Cardiology",
		SubSpecialtyName: "Cardiology Unit",
		DoctorName:       "Dr. Ann Lee",
		ProcedureType:    "Surgery",
		Category:         category,
		HasCategory:      true,
		Age:              age,
		RecordCount:      count,
	}
}

func newTestSeeder(t *testing.T, set *types.ColumnSet, cfg SeedConfig) *Seeder {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 20250615
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return fixedNow }
	}
	cfg.Logger = zerolog.Nop()
	s, err := NewSeeder(set, catalog.Default(), cfg)
	require.NoError(t, err)
	return s
}

func generate(t *testing.T, set *types.ColumnSet, cfg SeedConfig, cohorts ...types.CohortRow) *types.Table {
	t.Helper()
	table, err := newTestSeeder(t, set, cfg).Generate(context.Background(), cohorts)
	require.NoError(t, err)
	return table
}

var allNamed = []string{
	ColExtractDate, ColDistrict, ColFacilityDesc, ColSpecialtyName, ColSubSpecialtyName,
	ColDoctorName, ColProcedureType, ColCategory, ColAge,
	ColPatientID, ColGivenNames, ColSurname, ColGender, ColGenderCode, ColDateOfBirth,
	ColSuburb, ColPostCode, ColPhone, ColHomePhone,
	ColDoctorCode, ColSpecialtyCode, ColSubSpecCode, ColFacility, ColUnit, ColElectiveID,
	ColCurrentCat, ColCurrentStatus, ColCurrentStatusCode, ColCurrentNRFC, ColWaitGroup,
	ColBookedBeyondBreach, ColNRFCReason, ColNRFSComment, ColFutureNRFCDays,
	ColOperationDate, ColReadyForCareDate, ColWaitingDays,
	ColPrimaryProcCode, ColPrimaryProcDesc, ColOperationProc,
	ColAccommodationDesc, ColAccommodationCode, ColEstimatedLOS, ColEstProcMins, ColSourceEstProcMin,
	ColComments, ColTheatreSpecialtyName, ColOutsourcing, ColLongWait,
}

func TestNewSeederRejectsEmptyColumns(t *testing.T) {
	_, err := NewSeeder(types.NewColumnSet(nil), catalog.Default(), SeedConfig{})
	require.Error(t, err)
}

func TestNewSeederPicksSeedWhenZero(t *testing.T) {
	s, err := NewSeeder(columns(ColPatientID), catalog.Default(), SeedConfig{})
	require.NoError(t, err)
	assert.NotZero(t, s.Stats().Seed)
}

func TestRecordCountAndUniqueIDs(t *testing.T) {
	table := generate(t, columns(ColPatientID, ColDoctorCode, ColElectiveID), SeedConfig{},
		cohort("3", intPtr(40), 5))

	require.Equal(t, 5, table.Len())
	seen := make(map[string]bool)
	for _, row := range table.Rows {
		id := row[ColPatientID].(string)
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
		assert.Equal(t, table.Rows[0][ColDoctorCode], row[ColDoctorCode])
		assert.Regexp(t, `^EI-SU\d{4}-\d{5}$`, row[ColElectiveID])
	}
}

func TestZeroRecordCohortContributesNothing(t *testing.T) {
	table := generate(t, columns(ColPatientID), SeedConfig{},
		cohort("1", nil, 2), cohort("1", nil, 0), cohort("1", nil, 1))

	require.Equal(t, 3, table.Len())
	assert.Equal(t, "P1000002", table.Rows[2][ColPatientID])
}

func TestCountersStrictlyIncreaseAcrossCohorts(t *testing.T) {
	for _, workers := range []int{1, 4} {
		table := generate(t, columns(ColPatientID), SeedConfig{Workers: workers},
			cohort("1", nil, 3), cohort("NRFC", nil, 4), cohort("9", nil, 2), cohort("E", nil, 5))

		require.Equal(t, 14, table.Len())
		for i, row := range table.Rows {
			n, err := strconv.Atoi(strings.TrimPrefix(row[ColPatientID].(string), "P"))
			require.NoError(t, err)
			assert.Equal(t, 1000000+i, n, "workers=%d", workers)
		}
	}
}

func TestOutputColumnsKeepSpecOrder(t *testing.T) {
	set := columns(ColBookedBeyondBreach, ColCurrentStatus, ColCurrentStatusCode, ColPatientID)
	table := generate(t, set, SeedConfig{}, cohort("2", nil, 1))

	assert.Equal(t, []string{ColBookedBeyondBreach, ColCurrentStatus, ColCurrentStatusCode, ColPatientID}, table.Columns)
	for _, row := range table.Rows {
		assert.Len(t, row, 4)
	}
}

func TestPlanEvaluatesStatusCodeBeforeStatus(t *testing.T) {
	plan, err := NewPlan(columns(ColCurrentStatus, ColCurrentStatusCode))
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, ColCurrentStatusCode, plan.Steps[0].Column.Name)
	assert.Equal(t, ColCurrentStatus, plan.Steps[1].Column.Name)
	assert.False(t, plan.Steps[0].Fallback)
}

func TestStatusFollowsCategory(t *testing.T) {
	set := columns(ColCurrentStatus, ColCurrentStatusCode, ColCurrentCat, ColWaitGroup, ColCurrentNRFC)
	cases := []struct {
		category string
		code     string
		label    string
		group    string
		nrfc     string
	}{
		{"E", "B", "Booked", "Short Wait", "No"},
		{"3", "B", "Booked", "Short Wait", "No"},
		{"4", "W", "Waiting", "Long Wait", "No"},
		{"9", "W", "Waiting", "Long Wait", "No"},
		{"NRFC", "R", "Removed", "NRFC Group", "Yes"},
	}
	for _, tc := range cases {
		t.Run(tc.category, func(t *testing.T) {
			table := generate(t, set, SeedConfig{}, cohort(tc.category, nil, 3))
			for _, row := range table.Rows {
				assert.Equal(t, tc.code, row[ColCurrentStatusCode])
				assert.Equal(t, tc.label, row[ColCurrentStatus])
				assert.Equal(t, tc.category, row[ColCurrentCat])
				assert.Equal(t, tc.group, row[ColWaitGroup])
				assert.Equal(t, tc.nrfc, row[ColCurrentNRFC])
			}
		})
	}
}

func TestStatusWithoutCodeColumnUsesCategory(t *testing.T) {
	table := generate(t, columns(ColCurrentStatus), SeedConfig{}, cohort("NRFC", nil, 2))
	for _, row := range table.Rows {
		assert.Equal(t, "Removed", row[ColCurrentStatus])
	}
}

func TestNulledStatusCodeGivesUnknownStatus(t *testing.T) {
	set := columns(ColCurrentStatus, ColCurrentStatusCode)
	code, _ := set.Get(ColCurrentStatusCode)
	code.NullPercentage = 100

	table := generate(t, set, SeedConfig{}, cohort("1", nil, 3))
	for _, row := range table.Rows {
		assert.Nil(t, row[ColCurrentStatusCode])
		assert.Equal(t, catalog.UnknownStatus, row[ColCurrentStatus])
	}
}

func TestNRFCScenario(t *testing.T) {
	set := columns(ColCurrentNRFC, ColCurrentStatusCode, ColFutureNRFCDays, ColNRFCReason, ColBookedBeyondBreach, ColCurrentStatus)
	table := generate(t, set, SeedConfig{}, cohort("NRFC", intPtr(30), 20))

	cat := catalog.Default()
	for _, row := range table.Rows {
		assert.Equal(t, "Yes", row[ColCurrentNRFC])
		assert.Equal(t, "R", row[ColCurrentStatusCode])
		assert.Contains(t, cat.NRFCReasons, row[ColNRFCReason])
		assert.Equal(t, "No", row[ColBookedBeyondBreach])

		days := row[ColFutureNRFCDays].(int)
		assert.GreaterOrEqual(t, days, 0)
		assert.LessOrEqual(t, days, 90)
	}
}

func TestNonNRFCHasNoReasonAndZeroFutureDays(t *testing.T) {
	set := columns(ColNRFCReason, ColFutureNRFCDays, ColNRFSComment)
	table := generate(t, set, SeedConfig{}, cohort("2", nil, 5))
	for _, row := range table.Rows {
		assert.Nil(t, row[ColNRFCReason])
		assert.Equal(t, 0, row[ColFutureNRFCDays])
		assert.Contains(t, catalog.Default().NRFSComments, row[ColNRFSComment])
	}
}

func TestUnknownCategoryBehavesLikeNRFC(t *testing.T) {
	set := columns(allNamed...)

	unknown := newTestSeeder(t, set, SeedConfig{})
	got, err := unknown.Generate(context.Background(), []types.CohortRow{cohort("XYZ", intPtr(50), 4)})
	require.NoError(t, err)
	assert.Equal(t, 1, unknown.Stats().CoercedCategories)

	want := generate(t, columns(allNamed...), SeedConfig{}, cohort("NRFC", intPtr(50), 4))

	require.Equal(t, want.Len(), got.Len())
	for i := range got.Rows {
		assert.Equal(t, "XYZ", got.Rows[i][ColCategory])
		assert.Equal(t, "NRFC", got.Rows[i][ColCurrentCat])
		delete(got.Rows[i], ColCategory)
		delete(want.Rows[i], ColCategory)
		assert.Equal(t, want.Rows[i], got.Rows[i])
	}
}

func TestMissingCategoryIsCoerced(t *testing.T) {
	c := cohort("", nil, 1)
	c.HasCategory = false
	table := generate(t, columns(ColCurrentCat, ColCategory), SeedConfig{}, c)

	assert.Equal(t, "NRFC", table.Rows[0][ColCurrentCat])
	assert.Nil(t, table.Rows[0][ColCategory])
}

func TestCardiologyScenario(t *testing.T) {
	table := generate(t, columns(allNamed...), SeedConfig{}, cohort("9", intPtr(60), 1))
	require.Equal(t, 1, table.Len())
	row := table.Rows[0]

	assert.Equal(t, "Waiting", row[ColCurrentStatus])
	assert.Equal(t, "Long Wait", row[ColWaitGroup])
	assert.Equal(t, "No", row[ColCurrentNRFC])
	assert.Nil(t, row[ColNRFCReason])
	assert.Contains(t, []string{"Appendectomy", "Cholecystectomy", "Hip Replacement"}, row[ColPrimaryProcDesc])
	assert.Equal(t, row[ColPrimaryProcDesc], row[ColOperationProc])
	assert.Equal(t, "Cardiology Unit", row[ColTheatreSpecialtyName])
	assert.Equal(t, 60, row[ColAge])
	assert.Contains(t, []string{"Yes", "No"}, row[ColBookedBeyondBreach])

	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	dob := row[ColDateOfBirth].(time.Time)
	assert.False(t, dob.After(today.AddDate(0, 0, -60*365)))
	assert.False(t, dob.Before(today.AddDate(0, 0, -(60*365+363))))

	unit := row[ColUnit].(string)
	assert.Regexp(t, codePattern, unit)
	assert.Equal(t, "UN", unit[:2])
}

func TestDemographicsAgreeWithGender(t *testing.T) {
	set := columns(ColGender, ColGenderCode, ColGivenNames, ColSurname)
	table := generate(t, set, SeedConfig{}, cohort("1", nil, 40))

	for _, row := range table.Rows {
		switch row[ColGender] {
		case GenderMale:
			assert.Equal(t, 1, row[ColGenderCode])
			assert.Contains(t, maleFirstNames, row[ColGivenNames])
		case GenderFemale:
			assert.Equal(t, 2, row[ColGenderCode])
			assert.Contains(t, femaleFirstNames, row[ColGivenNames])
		default:
			t.Fatalf("unexpected gender %v", row[ColGender])
		}
		assert.NotEmpty(t, row[ColSurname])
	}
}

func TestMissingAgeLeavesDoBNull(t *testing.T) {
	table := generate(t, columns(ColAge, ColDateOfBirth), SeedConfig{}, cohort("1", nil, 3))
	for _, row := range table.Rows {
		assert.Nil(t, row[ColAge])
		assert.Nil(t, row[ColDateOfBirth])
	}
}

func TestDateWindows(t *testing.T) {
	set := columns(ColOperationDate, ColReadyForCareDate, ColWaitingDays)
	table := generate(t, set, SeedConfig{}, cohort("5", nil, 50))

	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	for _, row := range table.Rows {
		rfc := row[ColReadyForCareDate].(time.Time)
		assert.False(t, rfc.After(today.AddDate(0, 0, -10)))
		assert.False(t, rfc.Before(today.AddDate(0, 0, -99)))

		op := row[ColOperationDate].(time.Time)
		assert.False(t, op.Before(rfc))
		assert.True(t, op.Before(rfc.AddDate(0, 0, 30)))

		days := row[ColWaitingDays].(int)
		assert.GreaterOrEqual(t, days, 0)
		assert.LessOrEqual(t, days, 300)
	}
}

func TestOperationDateUsesSurgeryReadyDateAlias(t *testing.T) {
	table := generate(t, columns(ColOperationDate, ColSurgeryReadyDate), SeedConfig{}, cohort("5", nil, 10))
	for _, row := range table.Rows {
		ready := row[ColSurgeryReadyDate].(time.Time)
		op := row[ColOperationDate].(time.Time)
		assert.False(t, op.Before(ready))
	}
}

func TestOperationDateDefaultsToToday(t *testing.T) {
	table := generate(t, columns(ColOperationDate), SeedConfig{}, cohort("5", nil, 2))
	for _, row := range table.Rows {
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), row[ColOperationDate])
	}
}

func TestProcedureIsStablePerTypeAndCodeBeforeDesc(t *testing.T) {
	set := columns(ColPrimaryProcCode, ColPrimaryProcDesc)
	s := newTestSeeder(t, set, SeedConfig{})
	unknown := cohort("1", nil, 3)
	unknown.ProcedureType = "Telehealth"

	table, err := s.Generate(context.Background(), []types.CohortRow{cohort("1", nil, 3), cohort("2", nil, 3), unknown})
	require.NoError(t, err)

	first := table.Rows[0][ColPrimaryProcDesc]
	for _, row := range table.Rows[:6] {
		assert.Equal(t, first, row[ColPrimaryProcDesc])
		code, ok := s.Mapper().Lookup(MapProcedureCode, first.(string))
		require.True(t, ok)
		assert.Equal(t, code, row[ColPrimaryProcCode])
	}
	for _, row := range table.Rows[6:] {
		assert.Equal(t, catalog.FallbackProcedure, row[ColPrimaryProcDesc])
	}
}

func TestAccommodationPairIsConsistent(t *testing.T) {
	set := columns(ColAccommodationCode, ColAccommodationDesc)
	desc, _ := set.Get(ColAccommodationDesc)
	desc.NullPercentage = 90
	code, _ := set.Get(ColAccommodationCode)
	code.NullPercentage = 40

	table := generate(t, set, SeedConfig{}, cohort("1", nil, 400))

	cat := catalog.Default()
	nulls := 0
	for _, row := range table.Rows {
		if row[ColAccommodationCode] == nil {
			assert.Nil(t, row[ColAccommodationDesc])
			nulls++
			continue
		}
		a, ok := cat.AccommodationByDesc(row[ColAccommodationDesc].(string))
		require.True(t, ok)
		assert.Equal(t, a.Code, row[ColAccommodationCode])
	}
	// the code column is evaluated first, so its percentage applies
	assert.InDelta(t, 160, nulls, 50)
}

func TestAccommodationAliasSpelling(t *testing.T) {
	table := generate(t, columns(ColAccomodationDescAlt, ColAccomodationCodeAlt), SeedConfig{}, cohort("1", nil, 10))
	cat := catalog.Default()
	for _, row := range table.Rows {
		a, ok := cat.AccommodationByDesc(row[ColAccomodationDescAlt].(string))
		require.True(t, ok)
		assert.Equal(t, a.Code, row[ColAccomodationCodeAlt])
	}
}

func TestFullNullPercentageBlanksEverything(t *testing.T) {
	set := withNull(columns(allNamed...), 100)
	table := generate(t, set, SeedConfig{}, cohort("NRFC", intPtr(45), 10))

	for _, row := range table.Rows {
		for _, name := range allNamed {
			assert.Nil(t, row[name], name)
		}
	}
}

func TestZeroNullPercentageFillsEverything(t *testing.T) {
	table := generate(t, columns(allNamed...), SeedConfig{}, cohort("NRFC", intPtr(45), 10))

	for _, row := range table.Rows {
		for _, name := range allNamed {
			if name == ColEstimatedLOS {
				assert.Nil(t, row[name])
				continue
			}
			assert.NotNil(t, row[name], name)
		}
	}
}

func TestFallbackColumns(t *testing.T) {
	avg, std := 5.0, 0.0
	set := types.NewColumnSet([]*types.ColumnSpec{
		{Name: "LastReviewed", DataType: types.DataTypeTimestamp},
		{Name: "TheatreSessions", DataType: types.DataTypeInteger, AvgValue: &avg, StddevValue: &std},
		{Name: "ReferralRef", DataFormat: types.DataFormatAlphaNumeric},
		{Name: "ClinicalNote", DataFormat: types.DataFormatFreeText},
		{Name: "Misc"},
	})

	c := cohort("1", nil, 10)
	c.ExtractTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.HasExtractTime = true

	s := newTestSeeder(t, set, SeedConfig{})
	for _, step := range s.Plan().Steps {
		assert.True(t, step.Fallback, step.Column.Name)
	}

	table, err := s.Generate(context.Background(), []types.CohortRow{c})
	require.NoError(t, err)

	for _, row := range table.Rows {
		ts := row["LastReviewed"].(time.Time)
		assert.False(t, ts.Before(c.ExtractTime))
		assert.False(t, ts.After(c.ExtractTime.Add(24*time.Hour)))

		assert.Equal(t, 5, row["TheatreSessions"])
		assert.Len(t, row["ReferralRef"], 8)
		assert.NotEmpty(t, row["ClinicalNote"])
		assert.NotEmpty(t, row["Misc"])
	}
}

func TestDurationsAreNonNegative(t *testing.T) {
	neg := -40.0
	set := types.NewColumnSet([]*types.ColumnSpec{
		{Name: ColEstProcMins},
		{Name: ColSourceEstProcMin, AvgValue: &neg},
	})
	table := generate(t, set, SeedConfig{}, cohort("1", nil, 200))
	for _, row := range table.Rows {
		assert.GreaterOrEqual(t, row[ColEstProcMins].(int), 0)
		assert.GreaterOrEqual(t, row[ColSourceEstProcMin].(int), 0)
	}
}

func TestSameSeedIsReproducible(t *testing.T) {
	cohorts := []types.CohortRow{cohort("1", intPtr(30), 4), cohort("NRFC", intPtr(70), 3)}

	a := generate(t, columns(allNamed...), SeedConfig{Seed: 77}, cohorts...)
	b := generate(t, columns(allNamed...), SeedConfig{Seed: 77}, cohorts...)
	assert.Equal(t, a.Rows, b.Rows)

	c := generate(t, columns(allNamed...), SeedConfig{Seed: 78}, cohorts...)
	assert.NotEqual(t, a.Rows, c.Rows)
}

func TestParallelWorkersKeepPerCohortValues(t *testing.T) {
	cohorts := []types.CohortRow{
		cohort("1", intPtr(30), 6), cohort("4", intPtr(50), 6),
		cohort("NRFC", intPtr(70), 6), cohort("E", intPtr(20), 6),
	}
	set := []string{ColPatientID, ColGivenNames, ColDateOfBirth, ColWaitingDays, ColCurrentStatus}

	serial := generate(t, columns(set...), SeedConfig{Seed: 5, Workers: 1}, cohorts...)
	parallel := generate(t, columns(set...), SeedConfig{Seed: 5, Workers: 4}, cohorts...)
	assert.Equal(t, serial.Rows, parallel.Rows)
}

func TestMappedCodesShareAcrossCohorts(t *testing.T) {
	other := cohort("2", nil, 2)
	other.DoctorName = "Dr. Ben Hall"

	table := generate(t, columns(ColDoctorName, ColDoctorCode), SeedConfig{},
		cohort("1", nil, 2), other, cohort("3", nil, 2))

	assert.Equal(t, table.Rows[0][ColDoctorCode], table.Rows[5][ColDoctorCode])
	assert.Equal(t, "Dr. Ben Hall", table.Rows[2][ColDoctorName])
}

func TestGenerateHonoursCancellation(t *testing.T) {
	s := newTestSeeder(t, columns(ColPatientID), SeedConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Generate(ctx, []types.CohortRow{cohort("1", nil, 3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressIsReported(t *testing.T) {
	var calls []int
	cfg := SeedConfig{Progress: func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	}}
	generate(t, columns(ColPatientID), cfg, cohort("1", nil, 1), cohort("2", nil, 1), cohort("3", nil, 1))
	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestStatsAfterGenerate(t *testing.T) {
	s := newTestSeeder(t, columns(ColPatientID, ColDoctorCode, ColFacility), SeedConfig{})
	_, err := s.Generate(context.Background(), []types.CohortRow{cohort("1", nil, 2), cohort("bogus", nil, 3)})
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Cohorts)
	assert.Equal(t, 5, stats.Records)
	assert.Equal(t, 1, stats.CoercedCategories)
	assert.Equal(t, 2, stats.Mappings)
}

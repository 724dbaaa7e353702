package seeder

import (
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/catalog"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

// Output column names with a dedicated derivation.
const (
	ColExtractDate      = "ExtractDate"
	ColDistrict         = "District"
	ColFacilityDesc     = "FacilityDesc"
	ColSpecialtyName    = "SpecialtyName"
	ColSubSpecialtyName = "SubSpecialtyName"
	ColDoctorName       = "DoctorName"
	ColProcedureType    = "ProcedureType"
	ColCategory         = "Category"
	ColAge              = "Age"

	ColPatientID     = "PatientID"
	ColGivenNames    = "PatientGNames"
	ColSurname       = "PatientSurname"
	ColGender        = "PatientGender"
	ColGenderCode    = "GenderCode"
	ColDateOfBirth   = "PatientDoB"
	ColSuburb        = "PatientSuburb"
	ColPostCode      = "PatientPostCode"
	ColPhone         = "PatientPhone"
	ColHomePhone     = "PatientHomePhone"
	ColDoctorCode    = "DoctorCode"
	ColSpecialtyCode = "SpecialtyCode"
	ColSubSpecCode   = "SubSpecialtyCode"
	ColFacility      = "Facility"
	ColUnit          = "Unit"
	ColElectiveID    = "ElectiveID"

	ColCurrentCat         = "CurrentCat"
	ColCurrentStatusCode  = "CurrentStatusCode"
	ColCurrentStatus      = "CurrentStatus"
	ColCurrentNRFC        = "CurrentNRFC"
	ColWaitGroup          = "WaitGroup"
	ColBookedBeyondBreach = "BookedBeyondBreach"
	ColNRFCReason         = "NRFCReason"
	ColNRFSComment        = "NRFSComment"
	ColFutureNRFCDays     = "FutureNRFCDays"

	ColReadyForCareDate = "ReadyForCareDate"
	ColSurgeryReadyDate = "SurgeryReadyDate"
	ColWaitingDays      = "WaitingDays"
	ColOperationDate    = "OperationDate"

	ColPrimaryProcDesc = "PrimaryProcedureDesc"
	ColPrimaryProcCode = "PrimaryProcedureCode"
	ColOperationProc   = "OperationProcedure"

	ColAccommodationDesc    = "AccommodationDesc"
	ColAccommodationCode    = "AccommodationCode"
	ColAccomodationDescAlt  = "AccomodationDesc"
	ColAccomodationCodeAlt  = "AccomodationCode"
	ColEstimatedLOS         = "EstimatedLos"
	ColEstProcMins          = "EstProcMins"
	ColSourceEstProcMin     = "SourceEstProcMin"
	ColComments             = "Comments"
	ColTheatreSpecialtyName = "TheatreSpecialtyName"
	ColOutsourcing          = "Outsourcing"
	ColLongWait             = "LongWait"
)

// Rule derives one column of a record. Rules marked Joint decide nullability
// themselves and bypass the per-column null injection.
type Rule struct {
	Kind   string
	Deps   []string
	Joint  bool
	Derive func(rc *recordContext, col *types.ColumnSpec) interface{}
}

var readyForCareColumns = []string{ColReadyForCareDate, ColSurgeryReadyDate}

var registry = buildRegistry()

func buildRegistry() map[string]Rule {
	r := make(map[string]Rule)

	// cohort copies
	r[ColExtractDate] = Rule{Kind: "cohort", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		if rc.cohort.HasExtractTime {
			return rc.cohort.ExtractTime
		}
		return nonEmpty(rc.cohort.ExtractDate)
	}}
	r[ColDistrict] = copyRule(func(c *types.CohortRow) string { return c.District })
	r[ColFacilityDesc] = copyRule(func(c *types.CohortRow) string { return c.FacilityDesc })
	r[ColSpecialtyName] = copyRule(func(c *types.CohortRow) string { return c.SpecialtyName })
	r[ColSubSpecialtyName] = copyRule(func(c *types.CohortRow) string { return c.SubSpecialtyName })
	r[ColDoctorName] = copyRule(func(c *types.CohortRow) string { return c.DoctorName })
	r[ColProcedureType] = copyRule(func(c *types.CohortRow) string { return c.ProcedureType })
	r[ColCategory] = copyRule(func(c *types.CohortRow) string { return c.Category })
	r[ColAge] = Rule{Kind: "cohort", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		if rc.cohort.Age == nil {
			return nil
		}
		return *rc.cohort.Age
	}}

	// identity and demographics
	r[ColPatientID] = Rule{Kind: "identity", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return PatientID(rc.counter)
	}}
	r[ColGivenNames] = Rule{Kind: "demographic", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.fields.FirstName(rc.gender)
	}}
	r[ColSurname] = Rule{Kind: "demographic", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.fields.Surname()
	}}
	r[ColGender] = Rule{Kind: "demographic", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.gender
	}}
	r[ColGenderCode] = Rule{Kind: "demographic", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		if rc.gender == GenderMale {
			return 1
		}
		return 2
	}}
	r[ColDateOfBirth] = Rule{Kind: "demographic", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		if rc.cohort.Age == nil {
			return nil
		}
		days := *rc.cohort.Age*365 + rc.rand.IntN(364)
		return rc.today().AddDate(0, 0, -days)
	}}

	// contact
	r[ColSuburb] = Rule{Kind: "contact", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.fields.City()
	}}
	r[ColPostCode] = Rule{Kind: "contact", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.fields.PostCode()
	}}
	phone := Rule{Kind: "contact", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.fields.Phone()
	}}
	r[ColPhone] = phone
	r[ColHomePhone] = phone

	// mapped codes
	r[ColDoctorCode] = mappedRule(MapDoctor, func(c *types.CohortRow) string { return c.DoctorName })
	r[ColSpecialtyCode] = mappedRule(MapSpecialty, func(c *types.CohortRow) string { return c.SpecialtyName })
	r[ColSubSpecCode] = mappedRule(MapSubSpecialty, func(c *types.CohortRow) string { return c.SubSpecialtyName })
	r[ColFacility] = mappedRule(MapFacility, func(c *types.CohortRow) string { return c.FacilityDesc })
	r[ColUnit] = mappedRule(MapUnit, func(c *types.CohortRow) string { return c.SubSpecialtyName })
	r[ColElectiveID] = Rule{Kind: "identity", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		code := rc.mapper.GetOrCreate(MapSubSpecialty, rc.cohort.SubSpecialtyName)
		return fmt.Sprintf("EI-%s-%05d", code, rc.counter)
	}}

	// category and status
	r[ColCurrentCat] = Rule{Kind: "status", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.category
	}}
	r[ColCurrentStatusCode] = Rule{Kind: "status", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.catalog.StatusCode(rc.category)
	}}
	r[ColCurrentStatus] = Rule{Kind: "status", Deps: []string{ColCurrentStatusCode}, Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.status()
	}}
	r[ColCurrentNRFC] = Rule{Kind: "status", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		if rc.isNRFC() {
			return "Yes"
		}
		return "No"
	}}
	r[ColWaitGroup] = Rule{Kind: "status", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.catalog.WaitGroup(rc.category)
	}}
	r[ColBookedBeyondBreach] = Rule{Kind: "status", Deps: []string{ColCurrentStatus, ColCurrentStatusCode}, Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		var status string
		if v, inPlan := rc.lookup(ColCurrentStatus); inPlan {
			status, _ = v.(string)
		} else {
			status = rc.status()
		}
		if status == rc.catalog.StatusLabel(catalog.StatusBooked) || status == rc.catalog.StatusLabel(catalog.StatusWaiting) {
			return rc.fields.YesNo()
		}
		return "No"
	}}
	r[ColNRFCReason] = Rule{Kind: "nrfc", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		if !rc.isNRFC() {
			return nil
		}
		return rc.fields.Pick(rc.catalog.NRFCReasons)
	}}
	r[ColNRFSComment] = Rule{Kind: "nrfc", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.fields.Pick(rc.catalog.NRFSComments)
	}}
	r[ColFutureNRFCDays] = Rule{Kind: "nrfc", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		if !rc.isNRFC() {
			return 0
		}
		return rc.rand.IntN(91)
	}}

	// dates
	readyForCare := Rule{Kind: "temporal", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.today().AddDate(0, 0, -(10 + rc.rand.IntN(90)))
	}}
	r[ColReadyForCareDate] = readyForCare
	r[ColSurgeryReadyDate] = readyForCare
	r[ColWaitingDays] = Rule{Kind: "temporal", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.rand.IntN(301)
	}}
	r[ColOperationDate] = Rule{Kind: "temporal", Deps: readyForCareColumns, Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		for _, name := range readyForCareColumns {
			if rfc, ok := rc.record[name].(time.Time); ok {
				return rfc.AddDate(0, 0, rc.rand.IntN(30))
			}
		}
		return rc.today()
	}}

	// procedures
	r[ColPrimaryProcDesc] = Rule{Kind: "procedure", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.procedureDesc()
	}}
	r[ColPrimaryProcCode] = Rule{Kind: "procedure", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.mapper.GetOrCreate(MapProcedureCode, rc.procedureDesc())
	}}
	r[ColOperationProc] = Rule{Kind: "procedure", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.procedureDesc()
	}}

	// accommodation pair
	r[ColAccommodationDesc] = accommodationRule(false)
	r[ColAccomodationDescAlt] = accommodationRule(false)
	r[ColAccommodationCode] = accommodationRule(true)
	r[ColAccomodationCodeAlt] = accommodationRule(true)

	r[ColEstimatedLOS] = Rule{Kind: "unmodeled", Derive: func(*recordContext, *types.ColumnSpec) interface{} {
		return nil
	}}

	duration := Rule{Kind: "duration", Derive: func(rc *recordContext, col *types.ColumnSpec) interface{} {
		mean, stddev := distribution(col, durationMean, durationStddev)
		if mean < 0 {
			mean = 0
		}
		return SampleCount(rc.rand, mean, stddev)
	}}
	r[ColEstProcMins] = duration
	r[ColSourceEstProcMin] = duration

	// free text
	r[ColComments] = Rule{Kind: "text", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.fields.Pick(rc.catalog.Comments)
	}}
	r[ColTheatreSpecialtyName] = copyRule(func(c *types.CohortRow) string { return c.SubSpecialtyName })
	yesNoRule := Rule{Kind: "text", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.fields.YesNo()
	}}
	r[ColOutsourcing] = yesNoRule
	r[ColLongWait] = yesNoRule

	return r
}

func copyRule(field func(*types.CohortRow) string) Rule {
	return Rule{Kind: "cohort", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return nonEmpty(field(rc.cohort))
	}}
}

func mappedRule(category MappingCategory, label func(*types.CohortRow) string) Rule {
	return Rule{Kind: "mapped", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
		return rc.mapper.GetOrCreate(category, label(rc.cohort))
	}}
}

// accommodationRule draws the (code, description) pair once per record using
// the null percentage of whichever accommodation column is evaluated first.
func accommodationRule(code bool) Rule {
	return Rule{Kind: "accommodation", Joint: true, Derive: func(rc *recordContext, col *types.ColumnSpec) interface{} {
		if !rc.accommodationDrawn {
			rc.accommodationDrawn = true
			if ApplyNull(rc.rand, true, col.NullPercentage) != nil {
				a := rc.catalog.Accommodations[rc.rand.IntN(len(rc.catalog.Accommodations))]
				rc.accommodation = &a
			}
		}
		if rc.accommodation == nil {
			return nil
		}
		if !code {
			return rc.accommodation.Desc
		}
		if rc.accommodation.Code != "" {
			return rc.accommodation.Code
		}
		return rc.mapper.GetOrCreate(MapAccommodation, rc.accommodation.Desc)
	}}
}

// fallbackRule covers columns without a named rule, by declared type then format.
func fallbackRule(col *types.ColumnSpec) Rule {
	switch {
	case col.DataType == types.DataTypeTimestamp:
		return Rule{Kind: "fallback:timestamp", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
			base := rc.now
			if rc.cohort.HasExtractTime {
				base = rc.cohort.ExtractTime
			}
			return base.Add(time.Duration(rc.rand.IntN(86401)) * time.Second)
		}}
	case col.DataType.IsInteger():
		return Rule{Kind: "fallback:integer", Derive: func(rc *recordContext, col *types.ColumnSpec) interface{} {
			mean, stddev := distribution(col, genericMean, genericStddev)
			return SampleCount(rc.rand, mean, stddev)
		}}
	case col.DataFormat == types.DataFormatAlphaNumeric:
		return Rule{Kind: "fallback:alphanumeric", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
			return rc.fields.Token(8)
		}}
	case col.DataFormat == types.DataFormatFreeText:
		return Rule{Kind: "fallback:text", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
			return rc.fields.Sentence()
		}}
	default:
		return Rule{Kind: "fallback:word", Derive: func(rc *recordContext, _ *types.ColumnSpec) interface{} {
			return rc.fields.Word()
		}}
	}
}

// PatientID formats the run-wide patient counter.
func PatientID(counter int) string {
	return fmt.Sprintf("P%d", 1000000+counter)
}

func nonEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

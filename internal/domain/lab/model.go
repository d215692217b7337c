package lab

import (
	"time"

	"github.com/ehr/trialviz/internal/population"
)

// Reference range indicators.
const (
	RangeLow    = "LOW"
	RangeNormal = "NORMAL"
	RangeHigh   = "HIGH"
)

// Result maps to the lab_result table: one analysed laboratory value.
type Result struct {
	RecordID       string     `db:"id" json:"id" yaml:"id"`
	USUBJID        string     `db:"usubjid" json:"usubjid" yaml:"usubjid"`
	TestName       string     `db:"test_name" json:"test_name" yaml:"testName"`
	Category       *string    `db:"category" json:"category,omitempty" yaml:"category,omitempty"`
	VisitNumber    *float64   `db:"visit_number" json:"visit_number,omitempty" yaml:"visitNumber,omitempty"`
	AnalysisVisit  *string    `db:"analysis_visit" json:"analysis_visit,omitempty" yaml:"analysisVisit,omitempty"`
	Value          *float64   `db:"value" json:"value,omitempty" yaml:"value,omitempty"`
	Unit           *string    `db:"unit" json:"unit,omitempty" yaml:"unit,omitempty"`
	Baseline       *float64   `db:"baseline" json:"baseline,omitempty" yaml:"baseline,omitempty"`
	RefLow         *float64   `db:"ref_low" json:"ref_low,omitempty" yaml:"refLow,omitempty"`
	RefHigh        *float64   `db:"ref_high" json:"ref_high,omitempty" yaml:"refHigh,omitempty"`
	RangeIndicator *string    `db:"range_indicator" json:"range_indicator,omitempty" yaml:"rangeIndicator,omitempty"`
	CollectedAt    *time.Time `db:"collected_at" json:"collected_at,omitempty" yaml:"collectedAt,omitempty"`

	Subject *population.Subject `db:"-" json:"-" yaml:"-"`
}

func (r *Result) ID() string        { return r.RecordID }
func (r *Result) SubjectID() string { return r.USUBJID }

// ChangeFromBaseline is nil unless both the value and the baseline are known.
func (r *Result) ChangeFromBaseline() *float64 {
	if r.Value == nil || r.Baseline == nil {
		return nil
	}
	d := *r.Value - *r.Baseline
	return &d
}

// RangeCategory is the reported range indicator, or one derived from the
// reference limits when the lab did not report it.
func (r *Result) RangeCategory() string {
	if r.RangeIndicator != nil && *r.RangeIndicator != "" {
		return *r.RangeIndicator
	}
	if r.Value == nil {
		return ""
	}
	switch {
	case r.RefLow != nil && *r.Value < *r.RefLow:
		return RangeLow
	case r.RefHigh != nil && *r.Value > *r.RefHigh:
		return RangeHigh
	case r.RefLow != nil || r.RefHigh != nil:
		return RangeNormal
	}
	return ""
}

func (r *Result) StudyDay() *float64 { return r.Subject.DaysOnStudy(r.CollectedAt) }

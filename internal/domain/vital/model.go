package vital

import (
	"time"

	"github.com/ehr/trialviz/internal/population"
)

// Sign maps to the vital_sign table.
type Sign struct {
	RecordID    string     `db:"id" json:"id" yaml:"id"`
	USUBJID     string     `db:"usubjid" json:"usubjid" yaml:"usubjid"`
	TestName    string     `db:"test_name" json:"test_name" yaml:"testName"`
	VisitNumber *float64   `db:"visit_number" json:"visit_number,omitempty" yaml:"visitNumber,omitempty"`
	Visit       *string    `db:"visit" json:"visit,omitempty" yaml:"visit,omitempty"`
	Value       *float64   `db:"value" json:"value,omitempty" yaml:"value,omitempty"`
	Unit        *string    `db:"unit" json:"unit,omitempty" yaml:"unit,omitempty"`
	Baseline    *float64   `db:"baseline" json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Position    *string    `db:"position" json:"position,omitempty" yaml:"position,omitempty"`
	MeasuredAt  *time.Time `db:"measured_at" json:"measured_at,omitempty" yaml:"measuredAt,omitempty"`

	Subject *population.Subject `db:"-" json:"-" yaml:"-"`
}

func (v *Sign) ID() string        { return v.RecordID }
func (v *Sign) SubjectID() string { return v.USUBJID }

func (v *Sign) ChangeFromBaseline() *float64 {
	if v.Value == nil || v.Baseline == nil {
		return nil
	}
	d := *v.Value - *v.Baseline
	return &d
}

func (v *Sign) StudyDay() *float64 { return v.Subject.DaysOnStudy(v.MeasuredAt) }

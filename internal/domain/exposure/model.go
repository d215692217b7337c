package exposure

import (
	"strconv"
	"time"

	"github.com/ehr/trialviz/internal/population"
)

// Sample maps to the pk_sample table: one pharmacokinetic concentration
// drawn within a treatment cycle.
type Sample struct {
	RecordID       string     `db:"id" json:"id" yaml:"id"`
	USUBJID        string     `db:"usubjid" json:"usubjid" yaml:"usubjid"`
	Analyte        string     `db:"analyte" json:"analyte" yaml:"analyte"`
	Visit          *string    `db:"visit" json:"visit,omitempty" yaml:"visit,omitempty"`
	Cycle          *int       `db:"cycle" json:"cycle,omitempty" yaml:"cycle,omitempty"`
	Dose           *float64   `db:"dose" json:"dose,omitempty" yaml:"dose,omitempty"`
	DoseUnit       *string    `db:"dose_unit" json:"dose_unit,omitempty" yaml:"doseUnit,omitempty"`
	NominalHour    *float64   `db:"nominal_hour" json:"nominal_hour,omitempty" yaml:"nominalHour,omitempty"`
	Concentration  *float64   `db:"concentration" json:"concentration,omitempty" yaml:"concentration,omitempty"`
	CycleStartDate *time.Time `db:"cycle_start_date" json:"cycle_start_date,omitempty" yaml:"cycleStartDate,omitempty"`
	CycleEndDate   *time.Time `db:"cycle_end_date" json:"cycle_end_date,omitempty" yaml:"cycleEndDate,omitempty"`

	Subject *population.Subject `db:"-" json:"-" yaml:"-"`
}

func (s *Sample) ID() string        { return s.RecordID }
func (s *Sample) SubjectID() string { return s.USUBJID }

func (s *Sample) CycleStartDay() *float64 { return s.Subject.DaysOnStudy(s.CycleStartDate) }
func (s *Sample) CycleEndDay() *float64   { return s.Subject.DaysOnStudy(s.CycleEndDate) }

// series identifies one concentration-time profile.
func series(s *Sample) string {
	cycle := ""
	if s.Cycle != nil {
		cycle = strconv.Itoa(*s.Cycle)
	}
	return s.USUBJID + "\x00" + s.Analyte + "\x00" + cycle
}

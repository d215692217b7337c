package adverseevent

import (
	"time"

	"github.com/ehr/trialviz/internal/population"
)

// AdverseEvent maps to the adverse_event table. Terms follow MedDRA: a
// preferred term rolls up to a high level term and a system organ class.
type AdverseEvent struct {
	RecordID         string     `db:"id" json:"id" yaml:"id"`
	USUBJID          string     `db:"usubjid" json:"usubjid" yaml:"usubjid"`
	PreferredTerm    string     `db:"preferred_term" json:"preferred_term" yaml:"preferredTerm"`
	HighLevelTerm    *string    `db:"high_level_term" json:"high_level_term,omitempty" yaml:"highLevelTerm,omitempty"`
	SystemOrganClass string     `db:"system_organ_class" json:"system_organ_class" yaml:"systemOrganClass"`
	Grade            *int       `db:"grade" json:"grade,omitempty" yaml:"grade,omitempty"`
	Serious          bool       `db:"serious" json:"serious" yaml:"serious"`
	Causality        *string    `db:"causality" json:"causality,omitempty" yaml:"causality,omitempty"`
	Outcome          *string    `db:"outcome" json:"outcome,omitempty" yaml:"outcome,omitempty"`
	ActionTaken      *string    `db:"action_taken" json:"action_taken,omitempty" yaml:"actionTaken,omitempty"`
	SpecialInterest  []string   `db:"special_interest" json:"special_interest,omitempty" yaml:"specialInterest,omitempty"`
	StartDate        *time.Time `db:"start_date" json:"start_date,omitempty" yaml:"startDate,omitempty"`
	EndDate          *time.Time `db:"end_date" json:"end_date,omitempty" yaml:"endDate,omitempty"`

	Subject *population.Subject `db:"-" json:"-" yaml:"-"`
}

func (e *AdverseEvent) ID() string        { return e.RecordID }
func (e *AdverseEvent) SubjectID() string { return e.USUBJID }

// StartDay is the study day the event started on.
func (e *AdverseEvent) StartDay() *float64 { return e.Subject.DaysOnStudy(e.StartDate) }

// EndDay is the study day the event resolved on.
func (e *AdverseEvent) EndDay() *float64 { return e.Subject.DaysOnStudy(e.EndDate) }

// Duration is the length of the event in days, both ends included. Nil
// while the event is ongoing.
func (e *AdverseEvent) Duration() *float64 {
	if e.StartDate == nil || e.EndDate == nil || e.EndDate.Before(*e.StartDate) {
		return nil
	}
	d := e.EndDate.Sub(*e.StartDate).Hours()/24 + 1
	return &d
}

// Row is the details-on-demand projection of an adverse event.
type Row struct {
	*AdverseEvent
	SubjectCode string  `json:"subject_code,omitempty"`
	Arm         *string `json:"arm,omitempty"`
}

func toRow(e *AdverseEvent) any {
	r := Row{AdverseEvent: e}
	if e.Subject != nil {
		r.SubjectCode = e.Subject.SubjectCode
		r.Arm = e.Subject.Arm
	}
	return r
}

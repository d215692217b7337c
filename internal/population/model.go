// Package population holds the study subjects every domain entity belongs to
// and the attribute table used for population filters.
package population

import (
	"math"
	"time"
)

// Subject is one enrolled study participant within a dataset. USUBJID is
// unique across datasets; SubjectCode is the site-level code shown to users.
type Subject struct {
	USUBJID            string     `db:"usubjid" json:"usubjid" yaml:"usubjid"`
	SubjectCode        string     `db:"subject_code" json:"subject_code" yaml:"subjectCode"`
	DatasetID          string     `db:"dataset_id" json:"dataset_id" yaml:"datasetId"`
	StudyID            string     `db:"study_id" json:"study_id" yaml:"studyId"`
	StudyPart          *string    `db:"study_part" json:"study_part,omitempty" yaml:"studyPart,omitempty"`
	Arm                *string    `db:"arm" json:"arm,omitempty" yaml:"arm,omitempty"`
	Sex                *string    `db:"sex" json:"sex,omitempty" yaml:"sex,omitempty"`
	Race               *string    `db:"race" json:"race,omitempty" yaml:"race,omitempty"`
	Ethnicity          *string    `db:"ethnicity" json:"ethnicity,omitempty" yaml:"ethnicity,omitempty"`
	Country            *string    `db:"country" json:"country,omitempty" yaml:"country,omitempty"`
	Age                *float64   `db:"age" json:"age,omitempty" yaml:"age,omitempty"`
	FirstTreatmentDate *time.Time `db:"first_treatment_date" json:"first_treatment_date,omitempty" yaml:"firstTreatmentDate,omitempty"`
	Withdrawn          bool       `db:"withdrawn" json:"withdrawn" yaml:"withdrawn"`
	DeathFlag          bool       `db:"death_flag" json:"death_flag" yaml:"deathFlag"`
}

func (s *Subject) ID() string { return s.USUBJID }

// DaysOnStudy returns the study day of t relative to the first treatment
// date, day 1 being the first dose. Nil when either date is unknown.
func (s *Subject) DaysOnStudy(t *time.Time) *float64 {
	if s == nil || s.FirstTreatmentDate == nil || t == nil {
		return nil
	}
	d := math.Floor(t.Sub(*s.FirstTreatmentDate).Hours() / 24)
	if d >= 0 {
		d++
	}
	return &d
}

// Index maps subjects by USUBJID.
func Index(subjects []*Subject) map[string]*Subject {
	out := make(map[string]*Subject, len(subjects))
	for _, s := range subjects {
		out[s.USUBJID] = s
	}
	return out
}

// InDatasets reports whether the subject belongs to one of datasets. An
// empty list admits every dataset.
func (s *Subject) InDatasets(datasets []string) bool {
	if len(datasets) == 0 {
		return true
	}
	for _, d := range datasets {
		if s.DatasetID == d {
			return true
		}
	}
	return false
}

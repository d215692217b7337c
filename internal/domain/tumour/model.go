package tumour

import (
	"time"

	"github.com/ehr/trialviz/internal/population"
)

// Lesion types.
const (
	LesionTarget    = "TARGET"
	LesionNonTarget = "NON-TARGET"
)

// Assessment maps to the tumour_assessment table: one lesion measured at
// one visit, with the response of the subject at that visit.
type Assessment struct {
	RecordID        string     `db:"id" json:"id" yaml:"id"`
	USUBJID         string     `db:"usubjid" json:"usubjid" yaml:"usubjid"`
	LesionID        *string    `db:"lesion_id" json:"lesion_id,omitempty" yaml:"lesionId,omitempty"`
	LesionType      *string    `db:"lesion_type" json:"lesion_type,omitempty" yaml:"lesionType,omitempty"`
	Visit           *string    `db:"visit" json:"visit,omitempty" yaml:"visit,omitempty"`
	VisitNumber     *float64   `db:"visit_number" json:"visit_number,omitempty" yaml:"visitNumber,omitempty"`
	Diameter        *float64   `db:"diameter_mm" json:"diameter_mm,omitempty" yaml:"diameterMm,omitempty"`
	PercentChange   *float64   `db:"percent_change" json:"percent_change,omitempty" yaml:"percentChange,omitempty"`
	OverallResponse *string    `db:"overall_response" json:"overall_response,omitempty" yaml:"overallResponse,omitempty"`
	BestResponse    *string    `db:"best_response" json:"best_response,omitempty" yaml:"bestResponse,omitempty"`
	AssessedAt      *time.Time `db:"assessed_at" json:"assessed_at,omitempty" yaml:"assessedAt,omitempty"`

	Subject *population.Subject `db:"-" json:"-" yaml:"-"`
}

func (a *Assessment) ID() string        { return a.RecordID }
func (a *Assessment) SubjectID() string { return a.USUBJID }

func (a *Assessment) StudyDay() *float64 { return a.Subject.DaysOnStudy(a.AssessedAt) }

package tumour

import (
	"context"
	"fmt"

	"github.com/ehr/trialviz/internal/platform/store"
)

type Repo struct{ q store.Querier }

func NewRepo(q store.Querier) *Repo {
	return &Repo{q: q}
}

const assessmentCols = `t.id, t.usubjid, t.lesion_id, t.lesion_type, t.visit, t.visit_number, t.diameter_mm,
	t.percent_change, t.overall_response, t.best_response, t.assessed_at`

func scanAssessment(row store.Rows) (*Assessment, error) {
	var a Assessment
	err := row.Scan(&a.RecordID, &a.USUBJID, &a.LesionID, &a.LesionType, &a.Visit, &a.VisitNumber, &a.Diameter,
		&a.PercentChange, &a.OverallResponse, &a.BestResponse, &a.AssessedAt)
	return &a, err
}

func (r *Repo) LoadEvents(ctx context.Context, datasets []string) ([]*Assessment, error) {
	where, args := store.InDatasets("s.dataset_id", datasets)
	rows, err := r.q.Query(ctx, `SELECT `+assessmentCols+` FROM tumour_assessment t
		JOIN study_subject s ON s.usubjid = t.usubjid
		WHERE `+where+` ORDER BY t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tumour assessments: %w", err)
	}
	out, err := store.Collect(rows, scanAssessment)
	if err != nil {
		return nil, fmt.Errorf("scan tumour assessment: %w", err)
	}
	return out, nil
}

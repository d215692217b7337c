package lab

import (
	"context"
	"fmt"

	"github.com/ehr/trialviz/internal/platform/store"
)

type Repo struct{ q store.Querier }

func NewRepo(q store.Querier) *Repo {
	return &Repo{q: q}
}

const labCols = `l.id, l.usubjid, l.test_name, l.category, l.visit_number, l.analysis_visit, l.value, l.unit,
	l.baseline, l.ref_low, l.ref_high, l.range_indicator, l.collected_at`

func scanResult(row store.Rows) (*Result, error) {
	var r Result
	err := row.Scan(&r.RecordID, &r.USUBJID, &r.TestName, &r.Category, &r.VisitNumber, &r.AnalysisVisit, &r.Value, &r.Unit,
		&r.Baseline, &r.RefLow, &r.RefHigh, &r.RangeIndicator, &r.CollectedAt)
	return &r, err
}

func (r *Repo) LoadEvents(ctx context.Context, datasets []string) ([]*Result, error) {
	where, args := store.InDatasets("s.dataset_id", datasets)
	rows, err := r.q.Query(ctx, `SELECT `+labCols+` FROM lab_result l
		JOIN study_subject s ON s.usubjid = l.usubjid
		WHERE `+where+` ORDER BY l.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query lab results: %w", err)
	}
	results, err := store.Collect(rows, scanResult)
	if err != nil {
		return nil, fmt.Errorf("scan lab result: %w", err)
	}
	return results, nil
}

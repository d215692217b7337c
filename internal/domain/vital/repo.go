package vital

import (
	"context"
	"fmt"

	"github.com/ehr/trialviz/internal/platform/store"
)

type Repo struct{ q store.Querier }

func NewRepo(q store.Querier) *Repo {
	return &Repo{q: q}
}

const vitalCols = `v.id, v.usubjid, v.test_name, v.visit_number, v.visit, v.value, v.unit, v.baseline,
	v.position, v.measured_at`

func scanSign(row store.Rows) (*Sign, error) {
	var v Sign
	err := row.Scan(&v.RecordID, &v.USUBJID, &v.TestName, &v.VisitNumber, &v.Visit, &v.Value, &v.Unit, &v.Baseline,
		&v.Position, &v.MeasuredAt)
	return &v, err
}

func (r *Repo) LoadEvents(ctx context.Context, datasets []string) ([]*Sign, error) {
	where, args := store.InDatasets("s.dataset_id", datasets)
	rows, err := r.q.Query(ctx, `SELECT `+vitalCols+` FROM vital_sign v
		JOIN study_subject s ON s.usubjid = v.usubjid
		WHERE `+where+` ORDER BY v.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query vital signs: %w", err)
	}
	signs, err := store.Collect(rows, scanSign)
	if err != nil {
		return nil, fmt.Errorf("scan vital sign: %w", err)
	}
	return signs, nil
}

package exposure

import (
	"context"
	"fmt"

	"github.com/ehr/trialviz/internal/platform/store"
)

type Repo struct{ q store.Querier }

func NewRepo(q store.Querier) *Repo {
	return &Repo{q: q}
}

const sampleCols = `p.id, p.usubjid, p.analyte, p.visit, p.cycle, p.dose, p.dose_unit, p.nominal_hour,
	p.concentration, p.cycle_start_date, p.cycle_end_date`

func scanSample(row store.Rows) (*Sample, error) {
	var s Sample
	err := row.Scan(&s.RecordID, &s.USUBJID, &s.Analyte, &s.Visit, &s.Cycle, &s.Dose, &s.DoseUnit, &s.NominalHour,
		&s.Concentration, &s.CycleStartDate, &s.CycleEndDate)
	return &s, err
}

func (r *Repo) LoadEvents(ctx context.Context, datasets []string) ([]*Sample, error) {
	where, args := store.InDatasets("s.dataset_id", datasets)
	rows, err := r.q.Query(ctx, `SELECT `+sampleCols+` FROM pk_sample p
		JOIN study_subject s ON s.usubjid = p.usubjid
		WHERE `+where+` ORDER BY p.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query pk samples: %w", err)
	}
	samples, err := store.Collect(rows, scanSample)
	if err != nil {
		return nil, fmt.Errorf("scan pk sample: %w", err)
	}
	return samples, nil
}

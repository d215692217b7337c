package adverseevent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehr/trialviz/internal/platform/store"
)

// Repo loads adverse events of the subjects in scope.
type Repo struct{ q store.Querier }

func NewRepo(q store.Querier) *Repo {
	return &Repo{q: q}
}

const aeCols = `ae.id, ae.usubjid, ae.preferred_term, ae.high_level_term, ae.system_organ_class, ae.grade,
	ae.serious, ae.causality, ae.outcome, ae.action_taken, ae.special_interest, ae.start_date, ae.end_date`

func scanAdverseEvent(row store.Rows) (*AdverseEvent, error) {
	var (
		e      AdverseEvent
		groups *string
	)
	err := row.Scan(&e.RecordID, &e.USUBJID, &e.PreferredTerm, &e.HighLevelTerm, &e.SystemOrganClass, &e.Grade,
		&e.Serious, &e.Causality, &e.Outcome, &e.ActionTaken, &groups, &e.StartDate, &e.EndDate)
	if groups != nil {
		e.SpecialInterest = splitGroups(*groups)
	}
	return &e, err
}

// splitGroups decodes the comma separated special_interest column.
func splitGroups(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func (r *Repo) LoadEvents(ctx context.Context, datasets []string) ([]*AdverseEvent, error) {
	where, args := store.InDatasets("s.dataset_id", datasets)
	rows, err := r.q.Query(ctx, `SELECT `+aeCols+` FROM adverse_event ae
		JOIN study_subject s ON s.usubjid = ae.usubjid
		WHERE `+where+` ORDER BY ae.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query adverse events: %w", err)
	}
	events, err := store.Collect(rows, scanAdverseEvent)
	if err != nil {
		return nil, fmt.Errorf("scan adverse event: %w", err)
	}
	return events, nil
}

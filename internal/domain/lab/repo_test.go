package lab

import (
	"context"
	"testing"

	"github.com/ehr/trialviz/internal/platform/store"
)

func TestRepo_LoadEvents(t *testing.T) {
	ctx := context.Background()
	q, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer q.Close()

	stmts := []string{
		`CREATE TABLE study_subject (usubjid TEXT, dataset_id TEXT)`,
		`CREATE TABLE lab_result (id TEXT, usubjid TEXT, test_name TEXT, category TEXT, visit_number REAL,
			analysis_visit TEXT, value REAL, unit TEXT, baseline REAL, ref_low REAL, ref_high REAL,
			range_indicator TEXT, collected_at DATETIME)`,
		`INSERT INTO study_subject VALUES ('S-1', 'ds1'), ('S-2', 'ds2')`,
		`INSERT INTO lab_result VALUES ('L-1', 'S-1', 'ALT', 'CHEMISTRY', 1, 'BASELINE', 30.5, 'U/L', 30.5, 7, 56, NULL, NULL)`,
		`INSERT INTO lab_result VALUES ('L-2', 'S-1', 'ALT', 'CHEMISTRY', 2, 'WEEK 4', NULL, 'U/L', 30.5, 7, 56, NULL, NULL)`,
		`INSERT INTO lab_result VALUES ('L-3', 'S-2', 'ALT', 'CHEMISTRY', 1, 'BASELINE', 12, 'U/L', 12, 7, 56, 'NORMAL', NULL)`,
	}
	for _, st := range stmts {
		if err := store.Exec(ctx, q, st); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rs, err := NewRepo(q).LoadEvents(ctx, []string{"ds1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 results in ds1, got %d", len(rs))
	}
	if rs[0].Value == nil || *rs[0].Value != 30.5 || rs[0].RangeCategory() != RangeNormal {
		t.Errorf("unexpected L-1: %+v", rs[0])
	}
	if rs[1].Value != nil || rs[1].ChangeFromBaseline() != nil {
		t.Errorf("expected a missing value for L-2: %+v", rs[1])
	}
}

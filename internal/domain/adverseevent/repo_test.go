package adverseevent

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
		`CREATE TABLE adverse_event (id TEXT, usubjid TEXT, preferred_term TEXT, high_level_term TEXT,
			system_organ_class TEXT, grade INTEGER, serious INTEGER, causality TEXT, outcome TEXT,
			action_taken TEXT, special_interest TEXT, start_date DATETIME, end_date DATETIME)`,
		`INSERT INTO study_subject VALUES ('S-1', 'ds1'), ('S-2', 'ds2')`,
		`INSERT INTO adverse_event VALUES ('AE-2', 'S-1', 'Rash', NULL, 'Skin', NULL, 0, NULL, NULL, NULL, NULL, NULL, NULL)`,
		`INSERT INTO adverse_event VALUES ('AE-1', 'S-1', 'Nausea', 'Nausea and vomiting symptoms', 'Gastrointestinal', 2, 1,
			'RELATED', 'RECOVERED', 'DOSE REDUCED', 'GI toxicity, Dehydration', NULL, NULL)`,
		`INSERT INTO adverse_event VALUES ('AE-3', 'S-2', 'Fatigue', NULL, 'General', 1, 0, NULL, NULL, NULL, NULL, NULL, NULL)`,
	}
	for _, s := range stmts {
		if err := store.Exec(ctx, q, s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	events, err := NewRepo(q).LoadEvents(ctx, []string{"ds1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[0].ID() != "AE-1" || events[1].ID() != "AE-2" {
		t.Fatalf("expected AE-1, AE-2, got %d events", len(events))
	}
	ae := events[0]
	if ae.Grade == nil || *ae.Grade != 2 || !ae.Serious || ae.HighLevelTerm == nil {
		t.Errorf("unexpected AE-1: %+v", ae)
	}
	if len(ae.SpecialInterest) != 2 || ae.SpecialInterest[1] != "Dehydration" {
		t.Errorf("unexpected special interest groups %v", ae.SpecialInterest)
	}
	if events[1].Grade != nil || events[1].SpecialInterest != nil {
		t.Errorf("expected NULL columns to stay unset: %+v", events[1])
	}
}

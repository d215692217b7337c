package db

import (
	"testing"
	"testing/fstest"
	"time"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_indexes.sql":      {Data: []byte("SELECT 10;")},
		"002_second.sql":       {Data: []byte("SELECT 2;")},
		"001_trial_tables.sql": {Data: []byte("CREATE TABLE study_subject (usubjid TEXT);")},
		"readme.sql":           {Data: []byte("-- no version prefix")},
		"abc_invalid.sql":      {Data: []byte("-- non-numeric prefix")},
		"notes.txt":            {Data: []byte("not a sql file")},
	}

	migrations, err := NewMigrator(nil, fsys).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	expectedVersions := []int{1, 2, 10}
	for i, expected := range expectedVersions {
		if migrations[i].Version != expected {
			t.Errorf("migration[%d]: expected version %d, got %d", i, expected, migrations[i].Version)
		}
	}
	if migrations[0].Name != "001_trial_tables.sql" {
		t.Errorf("expected name 001_trial_tables.sql, got %s", migrations[0].Name)
	}
	if migrations[0].SQL != "CREATE TABLE study_subject (usubjid TEXT);" {
		t.Errorf("unexpected SQL content: %s", migrations[0].SQL)
	}
}

func TestLoadMigrations_Empty(t *testing.T) {
	migrations, err := NewMigrator(nil, fstest.MapFS{}).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected 0 migrations, got %d", len(migrations))
	}
}

func TestPendingAndStatuses(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "001_trial_tables.sql"},
		{Version: 2, Name: "002_indexes.sql"},
		{Version: 3, Name: "003_pk.sql"},
	}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	applied := map[int]time.Time{1: at}

	todo := pending(migrations, applied)
	if len(todo) != 2 || todo[0].Version != 2 || todo[1].Version != 3 {
		t.Errorf("unexpected pending migrations %+v", todo)
	}

	st := statuses(migrations, applied)
	if len(st) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(st))
	}
	if !st[0].Applied || st[0].AppliedAt == nil || !st[0].AppliedAt.Equal(at) {
		t.Errorf("expected migration 001 applied at %v, got %+v", at, st[0])
	}
	if st[1].Applied || st[1].AppliedAt != nil {
		t.Error("expected migration 002 to be pending")
	}
}

func TestQuoteSchema(t *testing.T) {
	if got := quote("trial"); got != `"trial"` {
		t.Errorf("expected quoted identifier, got %s", got)
	}
	if got := quote(`a"b`); got != `"a""b"` {
		t.Errorf("expected escaped quote, got %s", got)
	}
}

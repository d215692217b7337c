package population

import (
	"testing"
	"time"

	"github.com/ehr/trialviz/internal/engine"
)

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testSubjects() []*Subject {
	age := func(a float64) *float64 { return &a }
	return []*Subject{
		{USUBJID: "S-001", DatasetID: "ds1", Arm: strPtr("Drug"), Sex: strPtr("F"), Age: age(34)},
		{USUBJID: "S-002", DatasetID: "ds1", Arm: strPtr("Placebo"), Sex: strPtr("M"), Age: age(61), Withdrawn: true},
		{USUBJID: "S-003", DatasetID: "ds2", Arm: strPtr("Drug"), Sex: strPtr("M")},
	}
}

func TestDaysOnStudy(t *testing.T) {
	s := &Subject{FirstTreatmentDate: day(2024, 1, 10)}
	cases := []struct {
		at   *time.Time
		want float64
	}{
		{day(2024, 1, 10), 1},
		{day(2024, 1, 11), 2},
		{day(2024, 1, 9), -1},
		{day(2024, 2, 9), 31},
	}
	for _, tc := range cases {
		got := s.DaysOnStudy(tc.at)
		if got == nil || *got != tc.want {
			t.Errorf("DaysOnStudy(%s): expected %v, got %v", tc.at.Format("2006-01-02"), tc.want, got)
		}
	}
	if (&Subject{}).DaysOnStudy(day(2024, 1, 1)) != nil {
		t.Error("expected nil without a first treatment date")
	}
}

func TestInDatasets(t *testing.T) {
	s := testSubjects()[2]
	if !s.InDatasets(nil) {
		t.Error("empty dataset list should admit every subject")
	}
	if s.InDatasets([]string{"ds1"}) {
		t.Error("S-003 is not in ds1")
	}
	if !s.InDatasets([]string{"ds1", "ds2"}) {
		t.Error("S-003 is in ds2")
	}
}

func TestFilterPopulation(t *testing.T) {
	from := 40.0
	include := true
	res, err := engine.FilterPopulation(testSubjects(), Attributes, engine.Filters{
		AttrAge: {From: &from, IncludeEmpty: &include},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Filtered) != 2 || !res.Contains("S-002") || !res.Contains("S-003") {
		t.Errorf("expected S-002 and S-003, got %d subjects", len(res.Filtered))
	}
	if res.Contains("S-001") {
		t.Error("S-001 is younger than 40")
	}
}

func TestFilterSpecsBound(t *testing.T) {
	for _, spec := range FilterSpecs {
		if !Attributes.Has(spec.Attr) {
			t.Errorf("filter spec %s has no attribute", spec.Attr)
		}
	}
	sums, err := engine.AvailableFilters(testSubjects(), Attributes, FilterSpecs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range sums {
		if s.Attr == AttrAge && (s.Min == nil || *s.Min != 34 || !s.HasEmpty) {
			t.Errorf("unexpected AGE summary %+v", s)
		}
	}
}

type visit struct {
	subject *Subject
}

func TestLift_NilSubjectIsEmpty(t *testing.T) {
	attrs := engine.NewAttributes(Lift(func(v visit) *Subject { return v.subject })...)
	arm, err := attrs.Get(AttrArm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := arm.Value(visit{}, nil, engine.Params{}); !v.IsEmpty() {
		t.Errorf("expected Empty for a visit without subject, got %v", v)
	}
	drug := "Drug"
	if v := arm.Value(visit{subject: &Subject{Arm: &drug}}, nil, engine.Params{}); v.Token() != "Drug" {
		t.Errorf("expected Drug, got %v", v)
	}
	age, _ := attrs.Get(AttrAge)
	if !age.IsBinnable() {
		t.Error("expected AGE to stay binnable when lifted")
	}
}

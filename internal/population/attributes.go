package population

import "github.com/ehr/trialviz/internal/engine"

// Attribute names of the population table.
const (
	AttrArm       = "ARM"
	AttrSex       = "SEX"
	AttrRace      = "RACE"
	AttrEthnicity = "ETHNICITY"
	AttrCountry   = "COUNTRY"
	AttrAge       = "AGE"
	AttrStudyPart = "STUDY_PART"
	AttrDataset   = "DATASET"
	AttrWithdrawn = "WITHDRAWN"
	AttrDeath     = "DEATH"
)

type subjectAttr struct {
	name, label string
	fn          func(*Subject) engine.Value
	binnable    bool
}

var subjectAttrs = []subjectAttr{
	{AttrArm, "Arm", func(s *Subject) engine.Value { return engine.StringPtr(s.Arm) }, false},
	{AttrSex, "Sex", func(s *Subject) engine.Value { return engine.StringPtr(s.Sex) }, false},
	{AttrRace, "Race", func(s *Subject) engine.Value { return engine.StringPtr(s.Race) }, false},
	{AttrEthnicity, "Ethnicity", func(s *Subject) engine.Value { return engine.StringPtr(s.Ethnicity) }, false},
	{AttrCountry, "Country", func(s *Subject) engine.Value { return engine.StringPtr(s.Country) }, false},
	{AttrAge, "Age", func(s *Subject) engine.Value { return engine.NumberPtr(s.Age) }, true},
	{AttrStudyPart, "Study part", func(s *Subject) engine.Value { return engine.StringPtr(s.StudyPart) }, false},
	{AttrDataset, "Dataset", func(s *Subject) engine.Value { return engine.String(s.DatasetID) }, false},
	{AttrWithdrawn, "Withdrawn", func(s *Subject) engine.Value { return engine.Bool(s.Withdrawn) }, false},
	{AttrDeath, "Death", func(s *Subject) engine.Value { return engine.Bool(s.DeathFlag) }, false},
}

// Lift exposes the population attributes on an entity type that carries a
// subject, so events can be trellised or coloured by arm, sex and so on. A
// nil subject yields Empty.
func Lift[E any](subjectOf func(E) *Subject) []engine.Attribute[E] {
	out := make([]engine.Attribute[E], 0, len(subjectAttrs))
	for _, sa := range subjectAttrs {
		fn := sa.fn
		a := engine.Attr(sa.name, sa.label, func(e E) engine.Value {
			s := subjectOf(e)
			if s == nil {
				return engine.Empty
			}
			return fn(s)
		})
		if sa.binnable {
			a = a.Binnable()
		}
		out = append(out, a)
	}
	return out
}

// Attributes is the population attribute table.
var Attributes = engine.NewAttributes(Lift(func(s *Subject) *Subject { return s })...)

// FilterSpecs are the population filter dimensions offered to the UI.
var FilterSpecs = []engine.FilterSpec{
	{Attr: AttrDataset, Kind: engine.FilterSet},
	{Attr: AttrStudyPart, Kind: engine.FilterSet},
	{Attr: AttrArm, Kind: engine.FilterSet},
	{Attr: AttrSex, Kind: engine.FilterSet},
	{Attr: AttrRace, Kind: engine.FilterSet},
	{Attr: AttrEthnicity, Kind: engine.FilterSet},
	{Attr: AttrCountry, Kind: engine.FilterSet},
	{Attr: AttrAge, Kind: engine.FilterRange},
	{Attr: AttrWithdrawn, Kind: engine.FilterBool},
	{Attr: AttrDeath, Kind: engine.FilterBool},
}

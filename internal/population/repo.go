package population

import (
	"context"
	"fmt"

	"github.com/ehr/trialviz/internal/platform/store"
)

// Repo loads subjects from the study_subject table.
type Repo struct{ q store.Querier }

func NewRepo(q store.Querier) *Repo {
	return &Repo{q: q}
}

const subjectCols = `usubjid, subject_code, dataset_id, study_id, study_part, arm, sex, race,
	ethnicity, country, age, first_treatment_date, withdrawn, death_flag`

func scanSubject(row store.Rows) (*Subject, error) {
	var s Subject
	err := row.Scan(&s.USUBJID, &s.SubjectCode, &s.DatasetID, &s.StudyID, &s.StudyPart, &s.Arm, &s.Sex, &s.Race,
		&s.Ethnicity, &s.Country, &s.Age, &s.FirstTreatmentDate, &s.Withdrawn, &s.DeathFlag)
	return &s, err
}

// LoadPopulation returns the subjects of datasets, all of them when
// datasets is empty.
func (r *Repo) LoadPopulation(ctx context.Context, datasets []string) ([]*Subject, error) {
	where, args := store.InDatasets("dataset_id", datasets)
	rows, err := r.q.Query(ctx, `SELECT `+subjectCols+` FROM study_subject WHERE `+where+` ORDER BY usubjid`, args...)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	subjects, err := store.Collect(rows, scanSubject)
	if err != nil {
		return nil, fmt.Errorf("scan subject: %w", err)
	}
	return subjects, nil
}

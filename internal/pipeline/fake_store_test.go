// internal/pipeline/fake_store_test.go
package pipeline

import (
	"context"
	"sort"
	"time"

	"hiring-pipeline/internal/models"
)

// fakeStore is an in-memory Store with the same uniqueness semantics as the
// SQL implementation, including snapshot rollback on transaction failure.
type fakeStore struct {
	persons     map[string]*models.Person
	apps        map[string]*models.Application
	assessments map[string]*models.Assessment
	interviews  map[string]*models.Interview
	audit       []*models.AuditEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		persons:     map[string]*models.Person{},
		apps:        map[string]*models.Application{},
		assessments: map[string]*models.Assessment{},
		interviews:  map[string]*models.Interview{},
	}
}

func (f *fakeStore) Persons() PersonStore           { return &fakePersons{f} }
func (f *fakeStore) Applications() ApplicationStore { return &fakeApps{f} }
func (f *fakeStore) Assessments() AssessmentStore   { return &fakeAssessments{f} }
func (f *fakeStore) Interviews() InterviewStore     { return &fakeInterviews{f} }
func (f *fakeStore) Audit() AuditStore              { return &fakeAudit{f} }

func (f *fakeStore) WithTx(ctx context.Context, fn func(Store) error) error {
	snapshot := f.clone()
	if err := fn(f); err != nil {
		*f = *snapshot
		return err
	}
	return nil
}

func (f *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range f.persons {
		p := *v
		c.persons[k] = &p
	}
	for k, v := range f.apps {
		a := *v
		c.apps[k] = &a
	}
	for k, v := range f.assessments {
		a := *v
		c.assessments[k] = &a
	}
	for k, v := range f.interviews {
		i := *v
		c.interviews[k] = &i
	}
	c.audit = append([]*models.AuditEntry{}, f.audit...)
	return c
}

type fakePersons struct{ f *fakeStore }

func (s *fakePersons) Create(ctx context.Context, p *models.Person) error {
	cp := *p
	s.f.persons[p.ID] = &cp
	return nil
}

func (s *fakePersons) GetByID(ctx context.Context, id string) (*models.Person, error) {
	if p, ok := s.f.persons[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *fakePersons) GetByEmail(ctx context.Context, email string) (*models.Person, error) {
	for _, p := range s.f.persons {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakePersons) SetGeneralCompetencies(ctx context.Context, personID string, completed, passed bool) error {
	p := s.f.persons[personID]
	p.GeneralCompetenciesCompleted = completed
	p.GeneralCompetenciesPassed = &passed
	return nil
}

type fakeApps struct{ f *fakeStore }

func (s *fakeApps) Create(ctx context.Context, a *models.Application) error {
	for _, existing := range s.f.apps {
		if existing.SubmissionID == a.SubmissionID {
			return ErrDuplicateSubmission
		}
	}
	cp := *a
	s.f.apps[a.ID] = &cp
	return nil
}

func (s *fakeApps) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if a, ok := s.f.apps[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeApps) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Application, error) {
	for _, a := range s.f.apps {
		if a.SubmissionID == submissionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeApps) OpenAtStage(ctx context.Context, personID string, stages ...models.Stage) ([]*models.Application, error) {
	var out []*models.Application
	for _, a := range s.f.apps {
		if a.PersonID != personID {
			continue
		}
		if a.Status != models.StatusActive && a.Status != models.StatusAccepted {
			continue
		}
		for _, stage := range stages {
			if a.CurrentStage == stage {
				cp := *a
				out = append(out, &cp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeApps) CountOtherActiveAtStage(ctx context.Context, personID, excludeAppID string, stage models.Stage) (int, error) {
	n := 0
	for _, a := range s.f.apps {
		if a.PersonID == personID && a.ID != excludeAppID &&
			a.Status == models.StatusActive && a.CurrentStage == stage {
			n++
		}
	}
	return n, nil
}

func (s *fakeApps) SetStage(ctx context.Context, id string, stage models.Stage) error {
	s.f.apps[id].CurrentStage = stage
	return nil
}

func (s *fakeApps) SetStatus(ctx context.Context, id string, status models.Status, reason *string) error {
	s.f.apps[id].Status = status
	s.f.apps[id].RejectionReason = reason
	return nil
}

func (s *fakeApps) SetStageStatus(ctx context.Context, id string, stage models.Stage, status models.Status) error {
	s.f.apps[id].CurrentStage = stage
	s.f.apps[id].Status = status
	return nil
}

func (s *fakeApps) Delete(ctx context.Context, id string) error {
	delete(s.f.apps, id)
	for aid, a := range s.f.assessments {
		if a.ApplicationID == id {
			delete(s.f.assessments, aid)
		}
	}
	for iid, i := range s.f.interviews {
		if i.ApplicationID == id {
			delete(s.f.interviews, iid)
		}
	}
	return nil
}

type fakeAssessments struct{ f *fakeStore }

func (s *fakeAssessments) Create(ctx context.Context, a *models.Assessment) error {
	for _, existing := range s.f.assessments {
		if existing.SubmissionID == a.SubmissionID {
			return ErrDuplicateSubmission
		}
	}
	cp := *a
	s.f.assessments[a.ID] = &cp
	return nil
}

func (s *fakeAssessments) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	if a, ok := s.f.assessments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeAssessments) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Assessment, error) {
	for _, a := range s.f.assessments {
		if a.SubmissionID == submissionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeAssessments) SetReview(ctx context.Context, id string, passed bool, reviewedBy string, reviewedAt time.Time) error {
	a := s.f.assessments[id]
	a.Passed = &passed
	a.ReviewedBy = &reviewedBy
	a.ReviewedAt = &reviewedAt
	return nil
}

type fakeInterviews struct{ f *fakeStore }

func (s *fakeInterviews) Create(ctx context.Context, i *models.Interview) error {
	for _, existing := range s.f.interviews {
		if existing.ApplicationID == i.ApplicationID && existing.CompletedAt == nil {
			return ErrOpenInterviewExists
		}
	}
	cp := *i
	s.f.interviews[i.ID] = &cp
	return nil
}

func (s *fakeInterviews) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	if i, ok := s.f.interviews[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeInterviews) OpenByApplication(ctx context.Context, applicationID string) (*models.Interview, error) {
	for _, i := range s.f.interviews {
		if i.ApplicationID == applicationID && i.CompletedAt == nil {
			cp := *i
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeInterviews) Complete(ctx context.Context, id string, notes string, completedAt time.Time) error {
	i := s.f.interviews[id]
	i.Outcome = models.InterviewCompleted
	if notes != "" {
		i.Notes = &notes
	}
	i.CompletedAt = &completedAt
	return nil
}

func (s *fakeInterviews) Reschedule(ctx context.Context, id string, link string, scheduledAt *time.Time) error {
	i := s.f.interviews[id]
	i.SchedulingLink = link
	i.ScheduledAt = scheduledAt
	i.EmailSentAt = nil
	return nil
}

func (s *fakeInterviews) SetEmailSent(ctx context.Context, id string, at time.Time) error {
	s.f.interviews[id].EmailSentAt = &at
	return nil
}

type fakeAudit struct{ f *fakeStore }

func (s *fakeAudit) Append(ctx context.Context, e *models.AuditEntry) error {
	cp := *e
	cp.ID = int64(len(s.f.audit) + 1)
	s.f.audit = append(s.f.audit, &cp)
	return nil
}

var _ Store = (*fakeStore)(nil)

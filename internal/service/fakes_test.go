package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/mail"
	"github.com/alexanderramin/taskpilot/internal/tracker"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() Option { return WithClock(func() time.Time { return testNow }) }

func day(offset int) *time.Time {
	d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &d
}

var errBoom = errors.New("boom")

type fakeTracker struct {
	mu      sync.Mutex
	tasks   []domain.Task
	users   []domain.User
	err     error
	userErr error
	queries []tracker.Query
	updates map[int]string
}

func (f *fakeTracker) QueryWorkItems(_ context.Context, q tracker.Query) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if q.Unassigned && !t.Unassigned() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTracker) UpdateAssignee(_ context.Context, id int, email string) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = map[int]string{}
	}
	for _, t := range f.tasks {
		if t.ID == id {
			f.updates[id] = email
			t.AssignedTo = email
			return t, nil
		}
	}
	return domain.Task{}, tracker.ErrNotFound
}

func (f *fakeTracker) ListUsers(context.Context) ([]domain.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.users, nil
}

type stubRanker struct {
	ranked []domain.Task
	err    error
	got    []domain.Task
}

func (s *stubRanker) Rank(_ context.Context, bucket []domain.Task, _ int) ([]domain.Task, error) {
	s.got = bucket
	return s.ranked, s.err
}

type stubAssigner struct {
	in   intelligence.AssignmentInput
	recs []intelligence.Recommendation
	err  error
}

func (s *stubAssigner) Recommend(_ context.Context, in intelligence.AssignmentInput) ([]intelligence.Recommendation, error) {
	s.in = in
	return s.recs, s.err
}

type stubWriter struct{ calls int }

func (s *stubWriter) Compose(_ context.Context, to, from, brief string) (*intelligence.EmailDraft, error) {
	s.calls++
	return &intelligence.EmailDraft{Subject: "About " + brief, Body: "Hi " + to}, nil
}

type fakeMailer struct {
	events []mail.EventRequest
}

func (f *fakeMailer) DraftLink(subject, body string, to []string) (string, error) {
	if len(to) == 0 {
		return "", mail.ErrInvalidDraft
	}
	return "https://compose?subject=" + subject, nil
}

func (f *fakeMailer) ListRecent(context.Context) ([]domain.Email, error) {
	return []domain.Email{{ID: "m1", Subject: "hello"}}, nil
}

func (f *fakeMailer) CreateEvent(_ context.Context, req mail.EventRequest) (domain.Event, error) {
	f.events = append(f.events, req)
	return domain.Event{ID: "ev1", Subject: req.Subject, Attendees: req.Attendees}, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: 1, Title: "Fix login", State: "Active", Type: "Bug", AssignedTo: "ana@x.com", AssigneeName: "Ana",
			Priority: 1, Severity: "1 - Critical", DueDate: day(2)},
		{ID: 2, Title: "Write docs", State: "New", Type: "Task", Priority: 4, Severity: "4 - Low", DueDate: day(40)},
		{ID: 3, Title: "Billing export", State: "New", Type: "Task", AssignedTo: "ben@x.com", AssigneeName: "Ben",
			Priority: 2, Severity: "2 - High", DueDate: day(20)},
		{ID: 4, Title: "Cleanup", State: "Done", Type: "Task", Priority: 5, Severity: "4 - Low"},
	}
}

func sampleUsers() []domain.User {
	return []domain.User{
		{DisplayName: "Ana", MailAddress: "ana@x.com"},
		{DisplayName: "Ben", MailAddress: "ben@x.com"},
		{DisplayName: "Build Service"},
	}
}

type fakeCatalog struct {
	projects []domain.Project
	err      error
}

func (f *fakeCatalog) ListProjects(context.Context) ([]domain.Project, error) {
	return f.projects, f.err
}

func (f *fakeCatalog) CurrentProject(context.Context) (domain.Project, error) {
	if f.err != nil {
		return domain.Project{}, f.err
	}
	if len(f.projects) == 0 {
		return domain.Project{}, tracker.ErrNotFound
	}
	return f.projects[0], nil
}

package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-qbank-api/internal/models"
	"github.com/noah-isme/gema-qbank-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// memoryQuestionRepo mimics the gorm repository including optimistic versioning.
type memoryQuestionRepo struct {
	questions   map[uint]models.Question
	nextID      uint
	nextEntryID uint
	createCalls int
	saveCalls   int
	saveErr     error
}

func newMemoryQuestionRepo() *memoryQuestionRepo {
	return &memoryQuestionRepo{questions: map[uint]models.Question{}}
}

func cloneQuestion(q models.Question) models.Question {
	q.History = append([]models.QuestionHistory(nil), q.History...)
	return q
}

func (m *memoryQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	m.createCalls++
	m.nextID++
	question.ID = m.nextID
	question.Version = 1
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	m.stampHistory(question)
	m.questions[question.ID] = cloneQuestion(*question)
	return nil
}

func (m *memoryQuestionRepo) GetByID(ctx context.Context, id uint) (models.Question, error) {
	question, ok := m.questions[id]
	if !ok {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return cloneQuestion(question), nil
}

func (m *memoryQuestionRepo) Save(ctx context.Context, question *models.Question) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	stored, ok := m.questions[question.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != question.Version {
		return repository.ErrVersionConflict
	}
	question.Version++
	question.UpdatedAt = time.Now()
	m.stampHistory(question)
	m.questions[question.ID] = cloneQuestion(*question)
	return nil
}

func (m *memoryQuestionRepo) stampHistory(question *models.Question) {
	for i := range question.History {
		if question.History[i].ID == 0 {
			m.nextEntryID++
			question.History[i].ID = m.nextEntryID
			question.History[i].QuestionID = question.ID
			question.History[i].Sequence = i + 1
		}
	}
}

func (m *memoryQuestionRepo) ListByStatus(ctx context.Context, status models.QuestionStatus, owner *uint) ([]models.Question, error) {
	return m.List(ctx, repository.QuestionFilter{Status: &status, CreatedBy: owner})
}

func (m *memoryQuestionRepo) List(ctx context.Context, filter repository.QuestionFilter) ([]models.Question, error) {
	result := make([]models.Question, 0)
	for id := uint(1); id <= m.nextID; id++ {
		question, ok := m.questions[id]
		if !ok {
			continue
		}
		if filter.Status != nil && question.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && question.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.SubjectID != nil && question.SubjectID != *filter.SubjectID {
			continue
		}
		result = append(result, cloneQuestion(question))
	}
	return result, nil
}

// staticClassification knows exam 1, subjects 10 and 20, and topic 100 under subject 10.
type staticClassification struct {
	calls int
	err   error
}

func (s *staticClassification) ExamExists(ctx context.Context, id uint) (bool, error) {
	s.calls++
	return id == 1, s.err
}

func (s *staticClassification) SubjectExists(ctx context.Context, id uint) (bool, error) {
	s.calls++
	return id == 10 || id == 20, s.err
}

func (s *staticClassification) TopicBelongsToSubject(ctx context.Context, topicID, subjectID uint) (bool, error) {
	s.calls++
	return topicID == 100 && subjectID == 10, s.err
}

type recordingPublisher struct {
	events []QuestionEvent
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event QuestionEvent) error {
	r.events = append(r.events, event)
	return r.err
}

type memoryActivityRepo struct {
	entries []models.ActivityLog
	err     error
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	result := make([]models.ActivityLog, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		result = append(result, entry)
	}
	return result, int64(len(result)), nil
}

var errDatabaseDown = errors.New("database unavailable")

func ptrUint(v uint) *uint {
	return &v
}

func ptrString(v string) *string {
	return &v
}

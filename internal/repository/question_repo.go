package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-qbank-api/internal/models"
)

// ErrVersionConflict indicates the question changed between load and save.
var ErrVersionConflict = errors.New("question version conflict")

// QuestionFilter allows narrowing question queries.
type QuestionFilter struct {
	Status    *models.QuestionStatus
	CreatedBy *uint
	ExamID    *uint
	SubjectID *uint
	TopicID   *uint
}

// QuestionRepository persists questions together with their history ledger.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (models.Question, error)
	Save(ctx context.Context, question *models.Question) error
	ListByStatus(ctx context.Context, status models.QuestionStatus, owner *uint) ([]models.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]models.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Question{}).
		Preload("History", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sequence ASC")
		})
}

// Create inserts the question and its initial ledger entries in one transaction.
func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	history := question.History
	if question.Version == 0 {
		question.Version = 1
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("History").Create(question).Error; err != nil {
			return err
		}

		for i := range history {
			history[i].QuestionID = question.ID
			history[i].Sequence = i + 1
			if err := tx.Create(&history[i]).Error; err != nil {
				return err
			}
		}
		question.History = history
		return nil
	})
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.baseQuery(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

// Save replaces the stored record and appends unsaved ledger entries. The
// update only applies when the stored version still matches question.Version.
func (r *questionRepository) Save(ctx context.Context, question *models.Question) error {
	expected := question.Version
	updatedAt := time.Now()
	var inserted []int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Question{}).
			Where("id = ? AND version = ?", question.ID, expected).
			Updates(map[string]interface{}{
				"exam_id":          question.ExamID,
				"subject_id":       question.SubjectID,
				"topic_id":         question.TopicID,
				"content":          question.Content,
				"kind":             question.Kind,
				"option_a":         question.OptionA,
				"option_b":         question.OptionB,
				"option_c":         question.OptionC,
				"option_d":         question.OptionD,
				"correct_option":   question.CorrectOption,
				"explanation":      question.Explanation,
				"status":           question.Status,
				"last_modified_by": question.LastModifiedBy,
				"approved_by":      question.ApprovedBy,
				"rejected_by":      question.RejectedBy,
				"rejection_reason": question.RejectionReason,
				"version":          expected + 1,
				"updated_at":       updatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}

		for i := range question.History {
			entry := &question.History[i]
			if entry.ID != 0 {
				continue
			}
			entry.QuestionID = question.ID
			entry.Sequence = i + 1
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
			inserted = append(inserted, i)
		}
		return nil
	})
	if err != nil {
		// rolled back rows keep their assigned IDs; reset so a retry inserts them again
		for _, i := range inserted {
			question.History[i].ID = 0
		}
		return err
	}

	question.Version = expected + 1
	question.UpdatedAt = updatedAt
	return nil
}

func (r *questionRepository) ListByStatus(ctx context.Context, status models.QuestionStatus, owner *uint) ([]models.Question, error) {
	return r.List(ctx, QuestionFilter{Status: &status, CreatedBy: owner})
}

func (r *questionRepository) List(ctx context.Context, filter QuestionFilter) ([]models.Question, error) {
	query := r.baseQuery(ctx)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}

	if filter.ExamID != nil {
		query = query.Where("exam_id = ?", *filter.ExamID)
	}

	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}

	if filter.TopicID != nil {
		query = query.Where("topic_id = ?", *filter.TopicID)
	}

	var questions []models.Question
	if err := query.Order("created_at ASC").Order("id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

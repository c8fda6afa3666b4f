package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-qbank-api/internal/models"
)

// ClassificationRepository exposes exam/subject/topic reference data.
type ClassificationRepository interface {
	ExamExists(ctx context.Context, id uint) (bool, error)
	SubjectExists(ctx context.Context, id uint) (bool, error)
	TopicBelongsToSubject(ctx context.Context, topicID, subjectID uint) (bool, error)
	CreateExam(ctx context.Context, exam *models.Exam) error
	CreateSubject(ctx context.Context, subject *models.Subject) error
	CreateTopic(ctx context.Context, topic *models.Topic) error
	ListExams(ctx context.Context) ([]models.Exam, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
}

type classificationRepository struct {
	db *gorm.DB
}

// NewClassificationRepository constructs the reference-data repository.
func NewClassificationRepository(db *gorm.DB) ClassificationRepository {
	return &classificationRepository{db: db}
}

func (r *classificationRepository) ExamExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Exam{}, "id = ?", id)
}

func (r *classificationRepository) SubjectExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Subject{}, "id = ?", id)
}

func (r *classificationRepository) TopicBelongsToSubject(ctx context.Context, topicID, subjectID uint) (bool, error) {
	return r.exists(ctx, &models.Topic{}, "id = ? AND subject_id = ?", topicID, subjectID)
}

func (r *classificationRepository) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *classificationRepository) CreateExam(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *classificationRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Omit("Topics").Create(subject).Error
}

func (r *classificationRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Omit("Subject").Create(topic).Error
}

func (r *classificationRepository) ListExams(ctx context.Context) ([]models.Exam, error) {
	var exams []models.Exam
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *classificationRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).
		Preload("Topics", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("name ASC")
		}).
		Order("name ASC").
		Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

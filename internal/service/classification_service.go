package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-qbank-api/internal/dto"
	"github.com/noah-isme/gema-qbank-api/internal/models"
	"github.com/noah-isme/gema-qbank-api/internal/repository"
)

// ClassificationService manages exam/subject/topic reference data.
type ClassificationService interface {
	CreateExam(ctx context.Context, actor Actor, payload dto.ExamCreateRequest) (dto.ExamResponse, error)
	CreateSubject(ctx context.Context, actor Actor, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	CreateTopic(ctx context.Context, actor Actor, payload dto.TopicCreateRequest) (dto.TopicResponse, error)
	List(ctx context.Context) (dto.ClassificationResponse, error)
}

type classificationService struct {
	repo      repository.ClassificationRepository
	gate      *AccessGate
	validator *validator.Validate
	sanitizer *TextSanitizer
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewClassificationService constructs the reference-data service.
func NewClassificationService(repo repository.ClassificationRepository, gate *AccessGate, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ClassificationService {
	return &classificationService{
		repo:      repo,
		gate:      gate,
		validator: validate,
		sanitizer: NewTextSanitizer(),
		activity:  activity,
		logger:    logger.With().Str("component", "classification_service").Logger(),
	}
}

func (s *classificationService) CreateExam(ctx context.Context, actor Actor, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	if err := s.gate.Authorize(actor, OperationManageClassification); err != nil {
		return dto.ExamResponse{}, err
	}

	payload.Name = s.sanitizer.Clean(payload.Name)
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam := models.Exam{Name: payload.Name}
	if err := s.repo.CreateExam(ctx, &exam); err != nil {
		return dto.ExamResponse{}, storageFailure("create exam", err)
	}

	s.record(ctx, actor, "exam.created", models.ActivityEntityExam, exam.ID, exam.Name)
	return dto.NewExamResponse(exam), nil
}

func (s *classificationService) CreateSubject(ctx context.Context, actor Actor, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.gate.Authorize(actor, OperationManageClassification); err != nil {
		return dto.SubjectResponse{}, err
	}

	payload.Name = s.sanitizer.Clean(payload.Name)
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{Name: payload.Name}
	if err := s.repo.CreateSubject(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, storageFailure("create subject", err)
	}

	s.record(ctx, actor, "subject.created", models.ActivityEntitySubject, subject.ID, subject.Name)
	return dto.NewSubjectResponse(subject), nil
}

func (s *classificationService) CreateTopic(ctx context.Context, actor Actor, payload dto.TopicCreateRequest) (dto.TopicResponse, error) {
	if err := s.gate.Authorize(actor, OperationManageClassification); err != nil {
		return dto.TopicResponse{}, err
	}

	payload.Name = s.sanitizer.Clean(payload.Name)
	if err := s.validator.Struct(payload); err != nil {
		return dto.TopicResponse{}, err
	}

	ok, err := s.repo.SubjectExists(ctx, payload.SubjectID)
	if err != nil {
		return dto.TopicResponse{}, storageFailure("check subject", err)
	}
	if !ok {
		return dto.TopicResponse{}, referenceNotFound("subject %d does not exist", payload.SubjectID)
	}

	topic := models.Topic{SubjectID: payload.SubjectID, Name: payload.Name}
	if err := s.repo.CreateTopic(ctx, &topic); err != nil {
		return dto.TopicResponse{}, storageFailure("create topic", err)
	}

	s.record(ctx, actor, "topic.created", models.ActivityEntityTopic, topic.ID, topic.Name)
	return dto.NewTopicResponse(topic), nil
}

func (s *classificationService) List(ctx context.Context) (dto.ClassificationResponse, error) {
	exams, err := s.repo.ListExams(ctx)
	if err != nil {
		return dto.ClassificationResponse{}, storageFailure("list exams", err)
	}

	subjects, err := s.repo.ListSubjects(ctx)
	if err != nil {
		return dto.ClassificationResponse{}, storageFailure("list subjects", err)
	}

	response := dto.ClassificationResponse{
		Exams:    make([]dto.ExamResponse, 0, len(exams)),
		Subjects: make([]dto.SubjectResponse, 0, len(subjects)),
	}
	for _, exam := range exams {
		response.Exams = append(response.Exams, dto.NewExamResponse(exam))
	}
	for _, subject := range subjects {
		response.Subjects = append(response.Subjects, dto.NewSubjectResponse(subject))
	}

	return response, nil
}

func (s *classificationService) record(ctx context.Context, actor Actor, action, entityType string, id uint, name string) {
	if s.activity == nil {
		return
	}
	if _, err := s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   &id,
		Metadata:   map[string]interface{}{"name": name},
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record classification activity")
	}
}

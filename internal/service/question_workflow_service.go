package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-qbank-api/internal/dto"
	"github.com/noah-isme/gema-qbank-api/internal/models"
	"github.com/noah-isme/gema-qbank-api/internal/observability"
	"github.com/noah-isme/gema-qbank-api/internal/repository"
)

// DefaultRejectionReason is recorded when a processor rejects without a reason.
const DefaultRejectionReason = "No reason provided"

// QuestionWorkflowService moves questions through the gather, author, explain
// and process stages.
type QuestionWorkflowService interface {
	Create(ctx context.Context, actor Actor, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	ReviseByAuthor(ctx context.Context, actor Actor, id uint, payload dto.QuestionRevisionRequest) (dto.QuestionResponse, error)
	SupplyExplanation(ctx context.Context, actor Actor, id uint, payload dto.QuestionExplanationRequest) (dto.QuestionResponse, error)
	Approve(ctx context.Context, actor Actor, id uint) (dto.QuestionResponse, error)
	Reject(ctx context.Context, actor Actor, id uint, payload dto.QuestionRejectRequest) (dto.QuestionResponse, error)
	GetByID(ctx context.Context, actor Actor, id uint) (dto.QuestionResponse, error)
	ListByStatus(ctx context.Context, actor Actor, filter dto.QuestionListFilter) ([]dto.QuestionResponse, error)
	Queue(ctx context.Context, actor Actor) ([]dto.QuestionResponse, error)
	ListPublished(ctx context.Context, filter dto.PublishedQuestionFilter) ([]dto.QuestionResponse, error)
}

type questionWorkflowService struct {
	questions      repository.QuestionRepository
	classification ClassificationStore
	gate           *AccessGate
	validator      *validator.Validate
	activity       ActivityRecorder
	events         EventPublisher
	logger         zerolog.Logger
	tracer         trace.Tracer
	now            func() time.Time
}

// NewQuestionWorkflowService constructs the workflow engine. activity and
// events may be nil.
func NewQuestionWorkflowService(
	questions repository.QuestionRepository,
	classification ClassificationStore,
	gate *AccessGate,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) QuestionWorkflowService {
	return &questionWorkflowService{
		questions:      questions,
		classification: classification,
		gate:           gate,
		validator:      validate,
		activity:       activity,
		events:         events,
		logger:         logger.With().Str("component", "question_workflow_service").Logger(),
		tracer:         otel.Tracer("github.com/noah-isme/gema-qbank-api/internal/service/question_workflow"),
		now:            time.Now,
	}
}

// NextStatusAfterApproval infers which stage just finished from the role of
// the most recent ledger entry and returns the status approval advances to.
func NextStatusAfterApproval(question models.Question) models.QuestionStatus {
	latest, ok := question.LatestHistory()
	if !ok {
		return models.QuestionStatusAwaitingAuthor
	}

	switch latest.PerformedByRole {
	case models.RoleGatherer:
		return models.QuestionStatusAwaitingAuthor
	case models.RoleCreator:
		return models.QuestionStatusAwaitingExplainer
	case models.RoleExplainer:
		return models.QuestionStatusCompleted
	default:
		return models.QuestionStatusAwaitingAuthor
	}
}

func (s *questionWorkflowService) Create(ctx context.Context, actor Actor, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	ctx, span := s.startSpan(ctx, "questions.create", actor, 0)
	defer span.End()

	if err := s.gate.Authorize(actor, OperationCreate); err != nil {
		return dto.QuestionResponse{}, s.fail(span, err)
	}

	payload.Content = normalizeText(payload.Content)
	payload.Options = normalizeOptions(payload.Options)
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, s.fail(span, err)
	}

	choices := models.NewChoices(models.QuestionKind(payload.Kind), payload.Options.ByLetter(), models.ParseOptionLetter(payload.CorrectOption))
	if err := checkChoices(choices); err != nil {
		return dto.QuestionResponse{}, s.fail(span, err)
	}

	if err := s.checkReferences(ctx, payload.ExamID, payload.SubjectID, payload.TopicID); err != nil {
		return dto.QuestionResponse{}, s.fail(span, err)
	}

	question := models.Question{
		ExamID:         payload.ExamID,
		SubjectID:      payload.SubjectID,
		TopicID:        payload.TopicID,
		Content:        payload.Content,
		Status:         models.QuestionStatusAwaitingProcessor,
		CreatedBy:      actor.ID,
		LastModifiedBy: actor.ID,
	}
	question.SetChoices(choices)
	s.appendHistory(&question, actor, models.HistoryActionCreated, models.RoleGatherer, "submitted for processor review")

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, s.fail(span, storageFailure("create question", err))
	}

	s.committed(ctx, span, actor, question, models.HistoryActionCreated, "")
	return dto.NewQuestionResponse(question), nil
}

func (s *questionWorkflowService) ReviseByAuthor(ctx context.Context, actor Actor, id uint, payload dto.QuestionRevisionRequest) (dto.QuestionResponse, error) {
	return s.transition(ctx, actor, OperationRevise, id, models.QuestionStatusAwaitingAuthor, func(question *models.Question) (models.HistoryAction, string, error) {
		if payload.Content != nil {
			cleaned := normalizeText(*payload.Content)
			payload.Content = &cleaned
		}
		if payload.Options != nil {
			cleaned := normalizeOptions(*payload.Options)
			payload.Options = &cleaned
		}
		if err := s.validator.Struct(payload); err != nil {
			return "", "", err
		}

		choices := revisedChoices(question.Choices(), payload)
		if err := checkChoices(choices); err != nil {
			return "", "", err
		}

		examID, subjectID, topicID := question.ExamID, question.SubjectID, question.TopicID
		if payload.ExamID != nil {
			examID = *payload.ExamID
		}
		if payload.SubjectID != nil {
			subjectID = *payload.SubjectID
		}
		if payload.TopicID != nil {
			topicID = *payload.TopicID
		}
		if examID != question.ExamID || subjectID != question.SubjectID || topicID != question.TopicID {
			if err := s.checkReferences(ctx, examID, subjectID, topicID); err != nil {
				return "", "", err
			}
		}

		question.ExamID, question.SubjectID, question.TopicID = examID, subjectID, topicID
		if payload.Content != nil {
			question.Content = *payload.Content
		}
		question.SetChoices(choices)
		question.Status = models.QuestionStatusAwaitingProcessor
		question.LastModifiedBy = actor.ID
		s.appendHistory(question, actor, models.HistoryActionRevised, models.RoleCreator, "authoring complete")
		return models.HistoryActionRevised, "", nil
	})
}

func (s *questionWorkflowService) SupplyExplanation(ctx context.Context, actor Actor, id uint, payload dto.QuestionExplanationRequest) (dto.QuestionResponse, error) {
	return s.transition(ctx, actor, OperationExplain, id, models.QuestionStatusAwaitingExplainer, func(question *models.Question) (models.HistoryAction, string, error) {
		explanation := normalizeText(payload.Explanation)
		if explanation == "" {
			return "", "", &WorkflowError{Kind: ErrEmptyExplanation, Detail: "explanation must contain text"}
		}

		question.Explanation = explanation
		question.Status = models.QuestionStatusAwaitingProcessor
		question.LastModifiedBy = actor.ID
		s.appendHistory(question, actor, models.HistoryActionExplained, models.RoleExplainer, "explanation supplied")
		return models.HistoryActionExplained, "", nil
	})
}

func (s *questionWorkflowService) Approve(ctx context.Context, actor Actor, id uint) (dto.QuestionResponse, error) {
	return s.transition(ctx, actor, OperationApprove, id, models.QuestionStatusAwaitingProcessor, func(question *models.Question) (models.HistoryAction, string, error) {
		next := NextStatusAfterApproval(*question)

		approvedBy := actor.ID
		question.ApprovedBy = &approvedBy
		question.ClearRejection()
		question.Status = next
		question.LastModifiedBy = actor.ID
		s.appendHistory(question, actor, models.HistoryActionApproved, models.RoleProcessor, fmt.Sprintf("advanced to %s", next))
		return models.HistoryActionApproved, "", nil
	})
}

func (s *questionWorkflowService) Reject(ctx context.Context, actor Actor, id uint, payload dto.QuestionRejectRequest) (dto.QuestionResponse, error) {
	return s.transition(ctx, actor, OperationReject, id, models.QuestionStatusAwaitingProcessor, func(question *models.Question) (models.HistoryAction, string, error) {
		reason := normalizeText(payload.Reason)
		if reason == "" {
			reason = DefaultRejectionReason
		}

		rejectedBy := actor.ID
		question.Status = models.QuestionStatusRejected
		question.RejectedBy = &rejectedBy
		question.RejectionReason = &reason
		question.LastModifiedBy = actor.ID
		s.appendHistory(question, actor, models.HistoryActionRejected, models.RoleProcessor, reason)
		return models.HistoryActionRejected, reason, nil
	})
}

func (s *questionWorkflowService) GetByID(ctx context.Context, actor Actor, id uint) (dto.QuestionResponse, error) {
	if err := s.gate.Authorize(actor, OperationView); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.load(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	if !visibleTo(actor, question) {
		return dto.QuestionResponse{}, &WorkflowError{
			Kind:   ErrForbidden,
			Detail: fmt.Sprintf("gatherer %d may not view question %d submitted by another gatherer", actor.ID, id),
		}
	}

	return dto.NewQuestionResponse(question), nil
}

// visibleTo applies the gatherer owner rule to single reads. Published
// questions are visible to everyone.
func visibleTo(actor Actor, question models.Question) bool {
	if actor.Role != models.RoleGatherer || question.Status == models.QuestionStatusCompleted {
		return true
	}
	return question.CreatedBy == actor.ID
}

func (s *questionWorkflowService) ListByStatus(ctx context.Context, actor Actor, filter dto.QuestionListFilter) ([]dto.QuestionResponse, error) {
	if err := s.gate.Authorize(actor, OperationList); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	return s.listStage(ctx, actor, models.QuestionStatus(filter.Status))
}

// Queue lists the work waiting on the caller's own stage.
func (s *questionWorkflowService) Queue(ctx context.Context, actor Actor) ([]dto.QuestionResponse, error) {
	if err := s.gate.Authorize(actor, OperationList); err != nil {
		return nil, err
	}

	status := models.QuestionStatusAwaitingProcessor
	switch actor.Role {
	case models.RoleCreator:
		status = models.QuestionStatusAwaitingAuthor
	case models.RoleExplainer:
		status = models.QuestionStatusAwaitingExplainer
	}

	return s.listStage(ctx, actor, status)
}

func (s *questionWorkflowService) ListPublished(ctx context.Context, filter dto.PublishedQuestionFilter) ([]dto.QuestionResponse, error) {
	status := models.QuestionStatusCompleted
	questions, err := s.questions.List(ctx, repository.QuestionFilter{
		Status:    &status,
		ExamID:    filter.ExamID,
		SubjectID: filter.SubjectID,
		TopicID:   filter.TopicID,
	})
	if err != nil {
		return nil, storageFailure("list published questions", err)
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

// listStage applies the gatherer owner filter: gatherers only see their own submissions.
func (s *questionWorkflowService) listStage(ctx context.Context, actor Actor, status models.QuestionStatus) ([]dto.QuestionResponse, error) {
	var owner *uint
	if actor.Role == models.RoleGatherer {
		id := actor.ID
		owner = &id
	}

	questions, err := s.questions.ListByStatus(ctx, status, owner)
	if err != nil {
		return nil, storageFailure("list questions", err)
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

type mutation func(question *models.Question) (action models.HistoryAction, reason string, err error)

// transition runs the gate, load, state check, mutate and save sequence. apply
// must finish validating before it touches the question; nothing is persisted
// unless it returns nil.
func (s *questionWorkflowService) transition(ctx context.Context, actor Actor, op Operation, id uint, required models.QuestionStatus, apply mutation) (dto.QuestionResponse, error) {
	ctx, span := s.startSpan(ctx, string(op), actor, id)
	defer span.End()

	if err := s.gate.Authorize(actor, op); err != nil {
		return dto.QuestionResponse{}, s.fail(span, err)
	}

	question, err := s.load(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, s.fail(span, err)
	}

	if question.Status != required {
		return dto.QuestionResponse{}, s.fail(span, invalidState(required, question.Status))
	}

	from := question.Status
	action, reason, err := apply(&question)
	if err != nil {
		return dto.QuestionResponse{}, s.fail(span, err)
	}

	if err := s.questions.Save(ctx, &question); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.logger.Warn().Uint("question_id", id).Str("operation", string(op)).Msg("concurrent modification detected")
		}
		return dto.QuestionResponse{}, s.fail(span, storageFailure("save question", err))
	}

	s.committed(ctx, span, actor, question, action, from)
	if reason != "" {
		span.SetAttributes(attribute.String("question.rejection_reason", reason))
	}
	return dto.NewQuestionResponse(question), nil
}

func (s *questionWorkflowService) load(ctx context.Context, id uint) (models.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Question{}, questionNotFound(id)
		}
		return models.Question{}, storageFailure("load question", err)
	}
	return question, nil
}

// appendHistory records the stage role the operation belongs to, so a
// super-role caller acting for a stage still advances the pipeline normally.
func (s *questionWorkflowService) appendHistory(question *models.Question, actor Actor, action models.HistoryAction, stageRole models.Role, note string) {
	timestamp := s.now()
	if latest, ok := question.LatestHistory(); ok && latest.Timestamp.After(timestamp) {
		timestamp = latest.Timestamp
	}

	question.History = append(question.History, models.QuestionHistory{
		Action:          action,
		PerformedByRole: stageRole,
		PerformedBy:     actor.ID,
		Note:            note,
		Timestamp:       timestamp,
	})
}

func (s *questionWorkflowService) checkReferences(ctx context.Context, examID, subjectID, topicID uint) error {
	ok, err := s.classification.ExamExists(ctx, examID)
	if err != nil {
		return storageFailure("check exam", err)
	}
	if !ok {
		return referenceNotFound("exam %d does not exist", examID)
	}

	ok, err = s.classification.SubjectExists(ctx, subjectID)
	if err != nil {
		return storageFailure("check subject", err)
	}
	if !ok {
		return referenceNotFound("subject %d does not exist", subjectID)
	}

	ok, err = s.classification.TopicBelongsToSubject(ctx, topicID, subjectID)
	if err != nil {
		return storageFailure("check topic", err)
	}
	if !ok {
		return referenceNotFound("topic %d does not belong to subject %d", topicID, subjectID)
	}

	return nil
}

func normalizeOptions(options dto.QuestionOptionsPayload) dto.QuestionOptionsPayload {
	return dto.QuestionOptionsPayload{
		A: normalizeText(options.A),
		B: normalizeText(options.B),
		C: normalizeText(options.C),
		D: normalizeText(options.D),
	}
}

func checkChoices(choices models.Choices) error {
	if choices == nil {
		return &WorkflowError{Kind: ErrIncompleteChoiceSet, Detail: "unknown question kind"}
	}
	if missing := choices.MissingOptions(); len(missing) > 0 {
		return incompleteChoices(choices.Kind(), missing, choices.CorrectOption())
	}
	if !choices.ValidCorrect() {
		return incompleteChoices(choices.Kind(), nil, choices.CorrectOption())
	}
	return nil
}

// revisedChoices overlays the revision payload on the stored choices. When
// the kind changes without new options, stored option text carries over for
// the letters the new kind uses.
func revisedChoices(current models.Choices, payload dto.QuestionRevisionRequest) models.Choices {
	kind := models.QuestionKindSingleCorrectChoice
	options := map[models.OptionLetter]string{}
	correct := models.OptionLetter("")
	if current != nil {
		kind = current.Kind()
		for _, letter := range current.Letters() {
			options[letter] = current.Option(letter)
		}
		correct = current.CorrectOption()
	}

	if payload.Kind != nil {
		kind = models.QuestionKind(*payload.Kind)
	}
	if payload.Options != nil {
		options = payload.Options.ByLetter()
	}
	if payload.CorrectOption != nil {
		correct = models.ParseOptionLetter(*payload.CorrectOption)
	}

	return models.NewChoices(kind, options, correct)
}

func (s *questionWorkflowService) startSpan(ctx context.Context, name string, actor Actor, id uint) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	if correlationID := observability.CorrelationIDFromContext(ctx); correlationID != "" {
		span.SetAttributes(attribute.String("correlation.id", correlationID))
	}
	span.SetAttributes(
		attribute.Int64("question.id", int64(id)),
		attribute.Int64("question.actor_id", int64(actor.ID)),
		attribute.String("question.actor_role", string(actor.Role)),
	)
	return ctx, span
}

func (s *questionWorkflowService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// committed runs the side effects of a persisted transition. None of them can
// fail the operation.
func (s *questionWorkflowService) committed(ctx context.Context, span trace.Span, actor Actor, question models.Question, action models.HistoryAction, from models.QuestionStatus) {
	span.SetAttributes(
		attribute.Int64("question.id", int64(question.ID)),
		attribute.String("question.status", string(question.Status)),
	)
	observability.WorkflowTransitions().WithLabelValues(string(action), string(question.Status)).Inc()
	correlationID := observability.CorrelationIDFromContext(ctx)

	s.logger.Info().
		Str("correlation_id", correlationID).
		Uint("question_id", question.ID).
		Uint("actor_id", actor.ID).
		Str("action", string(action)).
		Str("from", string(from)).
		Str("status", string(question.Status)).
		Msg("question transition committed")

	if s.activity != nil {
		metadata := map[string]interface{}{
			"from":       string(from),
			"to":         string(question.Status),
			"version":    question.Version,
			"exam_id":    question.ExamID,
			"subject_id": question.SubjectID,
			"topic_id":   question.TopicID,
		}
		id := question.ID
		if _, err := s.activity.Record(ctx, ActivityEntry{
			Actor:      actor,
			Action:     "question." + string(action),
			EntityType: models.ActivityEntityQuestion,
			EntityID:   &id,
			Metadata:   metadata,

			CorrelationID: correlationID,
		}); err != nil {
			s.logger.Warn().Err(err).Uint("question_id", question.ID).Msg("failed to record question activity")
		}
	}

	if s.events != nil {
		event := QuestionEvent{
			QuestionID: question.ID,
			Action:     action,
			From:       from,
			To:         question.Status,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			OccurredAt: s.now().UTC(),

			CorrelationID: correlationID,
		}
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("question_id", question.ID).Msg("failed to publish question event")
		}
	}
}

package dto

import (
	"time"

	"github.com/noah-isme/gema-qbank-api/internal/models"
)

// QuestionOptionsPayload carries option text keyed by letter. Letters the
// selected kind does not use are ignored.
type QuestionOptionsPayload struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// ByLetter converts the payload into the map consumed by models.NewChoices.
func (p QuestionOptionsPayload) ByLetter() map[models.OptionLetter]string {
	return map[models.OptionLetter]string{
		models.OptionA: p.A,
		models.OptionB: p.B,
		models.OptionC: p.C,
		models.OptionD: p.D,
	}
}

// QuestionCreateRequest is submitted by the gathering stage.
type QuestionCreateRequest struct {
	ExamID        uint                   `json:"exam_id" validate:"required,gt=0"`
	SubjectID     uint                   `json:"subject_id" validate:"required,gt=0"`
	TopicID       uint                   `json:"topic_id" validate:"required,gt=0"`
	Content       string                 `json:"content" validate:"required"`
	Kind          string                 `json:"kind" validate:"required,oneof=single_correct_choice binary_choice"`
	Options       QuestionOptionsPayload `json:"options"`
	CorrectOption string                 `json:"correct_option"`
}

// QuestionRevisionRequest is submitted by the authoring stage. Nil fields keep
// their stored value.
type QuestionRevisionRequest struct {
	ExamID        *uint                   `json:"exam_id" validate:"omitempty,gt=0"`
	SubjectID     *uint                   `json:"subject_id" validate:"omitempty,gt=0"`
	TopicID       *uint                   `json:"topic_id" validate:"omitempty,gt=0"`
	Content       *string                 `json:"content" validate:"omitnil,min=1"`
	Kind          *string                 `json:"kind" validate:"omitempty,oneof=single_correct_choice binary_choice"`
	Options       *QuestionOptionsPayload `json:"options"`
	CorrectOption *string                 `json:"correct_option"`
}

// QuestionExplanationRequest is submitted by the explanation stage.
type QuestionExplanationRequest struct {
	Explanation string `json:"explanation"`
}

// QuestionRejectRequest carries an optional rejection reason.
type QuestionRejectRequest struct {
	Reason string `json:"reason"`
}

// QuestionListFilter selects a stage for listing.
type QuestionListFilter struct {
	Status string `query:"status" validate:"required,oneof=awaiting_processor awaiting_author awaiting_explainer completed rejected"`
}

// PublishedQuestionFilter narrows the completed-question listing.
type PublishedQuestionFilter struct {
	ExamID    *uint `query:"exam_id"`
	SubjectID *uint `query:"subject_id"`
	TopicID   *uint `query:"topic_id"`
}

// QuestionHistoryResponse serializes a ledger entry.
type QuestionHistoryResponse struct {
	Action          string    `json:"action"`
	PerformedByRole string    `json:"performed_by_role"`
	PerformedBy     uint      `json:"performed_by"`
	Note            string    `json:"note"`
	Timestamp       time.Time `json:"timestamp"`
}

// QuestionResponse is returned to API clients when viewing questions.
type QuestionResponse struct {
	ID              uint                      `json:"id"`
	ExamID          uint                      `json:"exam_id"`
	SubjectID       uint                      `json:"subject_id"`
	TopicID         uint                      `json:"topic_id"`
	Content         string                    `json:"content"`
	Kind            string                    `json:"kind"`
	Options         map[string]string         `json:"options"`
	CorrectOption   string                    `json:"correct_option"`
	Explanation     string                    `json:"explanation"`
	Status          string                    `json:"status"`
	CreatedBy       uint                      `json:"created_by"`
	LastModifiedBy  uint                      `json:"last_modified_by"`
	ApprovedBy      *uint                     `json:"approved_by"`
	RejectedBy      *uint                     `json:"rejected_by"`
	RejectionReason *string                   `json:"rejection_reason"`
	Version         uint                      `json:"version"`
	History         []QuestionHistoryResponse `json:"history"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	response := QuestionResponse{
		ID:              model.ID,
		ExamID:          model.ExamID,
		SubjectID:       model.SubjectID,
		TopicID:         model.TopicID,
		Content:         model.Content,
		Kind:            string(model.Kind),
		CorrectOption:   string(model.CorrectOption),
		Explanation:     model.Explanation,
		Status:          string(model.Status),
		CreatedBy:       model.CreatedBy,
		LastModifiedBy:  model.LastModifiedBy,
		ApprovedBy:      model.ApprovedBy,
		RejectedBy:      model.RejectedBy,
		RejectionReason: model.RejectionReason,
		Version:         model.Version,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		Options:         map[string]string{},
		History:         make([]QuestionHistoryResponse, 0, len(model.History)),
	}

	if choices := model.Choices(); choices != nil {
		for _, letter := range choices.Letters() {
			response.Options[string(letter)] = choices.Option(letter)
		}
	}

	for _, entry := range model.History {
		response.History = append(response.History, QuestionHistoryResponse{
			Action:          string(entry.Action),
			PerformedByRole: string(entry.PerformedByRole),
			PerformedBy:     entry.PerformedBy,
			Note:            entry.Note,
			Timestamp:       entry.Timestamp,
		})
	}

	return response
}

// NewQuestionResponseSlice converts question models into DTOs.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}

	return responses
}

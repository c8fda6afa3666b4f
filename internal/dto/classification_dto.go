package dto

import "github.com/noah-isme/gema-qbank-api/internal/models"

// ExamCreateRequest creates an exam.
type ExamCreateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// SubjectCreateRequest creates a subject.
type SubjectCreateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// TopicCreateRequest creates a topic under an existing subject.
type TopicCreateRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=255"`
}

type ExamResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TopicResponse struct {
	ID        uint   `json:"id"`
	SubjectID uint   `json:"subject_id"`
	Name      string `json:"name"`
}

type SubjectResponse struct {
	ID     uint            `json:"id"`
	Name   string          `json:"name"`
	Topics []TopicResponse `json:"topics"`
}

func NewExamResponse(model models.Exam) ExamResponse {
	return ExamResponse{ID: model.ID, Name: model.Name}
}

func NewTopicResponse(model models.Topic) TopicResponse {
	return TopicResponse{ID: model.ID, SubjectID: model.SubjectID, Name: model.Name}
}

func NewSubjectResponse(model models.Subject) SubjectResponse {
	topics := make([]TopicResponse, 0, len(model.Topics))
	for _, topic := range model.Topics {
		topics = append(topics, NewTopicResponse(topic))
	}
	return SubjectResponse{ID: model.ID, Name: model.Name, Topics: topics}
}

// ClassificationResponse lists all reference data in one payload.
type ClassificationResponse struct {
	Exams    []ExamResponse    `json:"exams"`
	Subjects []SubjectResponse `json:"subjects"`
}

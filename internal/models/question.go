package models

import "time"

// Question is the reviewable unit moving through the approval pipeline.
type Question struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	ExamID          uint              `gorm:"not null;index" json:"exam_id"`
	SubjectID       uint              `gorm:"not null;index" json:"subject_id"`
	TopicID         uint              `gorm:"not null;index" json:"topic_id"`
	Content         string            `gorm:"type:text;not null" json:"content"`
	Kind            QuestionKind      `gorm:"size:32;not null" json:"kind"`
	OptionA         string            `gorm:"type:text" json:"option_a"`
	OptionB         string            `gorm:"type:text" json:"option_b"`
	OptionC         string            `gorm:"type:text" json:"option_c"`
	OptionD         string            `gorm:"type:text" json:"option_d"`
	CorrectOption   OptionLetter      `gorm:"size:1;not null" json:"correct_option"`
	Explanation     string            `gorm:"type:text" json:"explanation"`
	Status          QuestionStatus    `gorm:"size:32;not null;index" json:"status"`
	CreatedBy       uint              `gorm:"not null;index" json:"created_by"`
	LastModifiedBy  uint              `gorm:"not null" json:"last_modified_by"`
	ApprovedBy      *uint             `json:"approved_by"`
	RejectedBy      *uint             `json:"rejected_by"`
	RejectionReason *string           `gorm:"type:text" json:"rejection_reason"`
	Version         uint              `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	History         []QuestionHistory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"history"`
}

// Choices decodes the persisted option columns into the variant for Kind.
func (q Question) Choices() Choices {
	return NewChoices(q.Kind, map[OptionLetter]string{
		OptionA: q.OptionA,
		OptionB: q.OptionB,
		OptionC: q.OptionC,
		OptionD: q.OptionD,
	}, q.CorrectOption)
}

// SetChoices writes a variant back into the option columns. Letters the
// variant does not carry are cleared.
func (q *Question) SetChoices(c Choices) {
	q.Kind = c.Kind()
	q.OptionA = c.Option(OptionA)
	q.OptionB = c.Option(OptionB)
	q.OptionC = c.Option(OptionC)
	q.OptionD = c.Option(OptionD)
	q.CorrectOption = c.CorrectOption()
}

// LatestHistory returns the most recent ledger entry, if any.
func (q Question) LatestHistory() (QuestionHistory, bool) {
	if len(q.History) == 0 {
		return QuestionHistory{}, false
	}
	return q.History[len(q.History)-1], true
}

// ClearRejection drops rejection fields left from a prior cycle.
func (q *Question) ClearRejection() {
	q.RejectedBy = nil
	q.RejectionReason = nil
}

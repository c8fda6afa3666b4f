package models

import "time"

// QuestionHistory is one append-only ledger entry describing a transition.
type QuestionHistory struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	QuestionID      uint          `gorm:"not null;uniqueIndex:idx_question_history_order,priority:1" json:"question_id"`
	Sequence        int           `gorm:"not null;uniqueIndex:idx_question_history_order,priority:2" json:"sequence"`
	Action          HistoryAction `gorm:"size:32;not null" json:"action"`
	PerformedByRole Role          `gorm:"size:32;not null" json:"performed_by_role"`
	PerformedBy     uint          `gorm:"not null" json:"performed_by"`
	Note            string        `gorm:"type:text" json:"note"`
	Timestamp       time.Time     `gorm:"not null" json:"timestamp"`
}

// TableName pins the ledger table name.
func (QuestionHistory) TableName() string {
	return "question_histories"
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is the audit row written after a committed question transition
// or classification change. ActorRole is the caller's real role, which may
// differ from the stage role recorded on the question's own history when the
// super-role acts for a stage. CorrelationID ties the row to the HTTP request
// and the published question event.
type ActivityLog struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ActorID       uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole     Role              `gorm:"size:32;not null" json:"actor_role"`
	Action        string            `gorm:"size:64;not null;index" json:"action"`
	EntityType    string            `gorm:"size:64;not null;index:idx_activity_entity,priority:1" json:"entity_type"`
	EntityID      *uint             `gorm:"index:idx_activity_entity,priority:2" json:"entity_id"`
	CorrelationID string            `gorm:"size:64;index" json:"correlation_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Activity entity types.
const (
	ActivityEntityQuestion = "question"
	ActivityEntityExam     = "exam"
	ActivityEntitySubject  = "subject"
	ActivityEntityTopic    = "topic"
)

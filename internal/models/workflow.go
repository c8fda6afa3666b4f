package models

// QuestionStatus enumerates the pipeline positions a question can occupy.
type QuestionStatus string

const (
	// QuestionStatusAwaitingProcessor indicates a producing stage submitted the question for review.
	QuestionStatusAwaitingProcessor QuestionStatus = "awaiting_processor"
	// QuestionStatusAwaitingAuthor indicates the authoring stage owns the question.
	QuestionStatusAwaitingAuthor QuestionStatus = "awaiting_author"
	// QuestionStatusAwaitingExplainer indicates the explanation stage owns the question.
	QuestionStatusAwaitingExplainer QuestionStatus = "awaiting_explainer"
	// QuestionStatusCompleted is terminal and successful.
	QuestionStatusCompleted QuestionStatus = "completed"
	// QuestionStatusRejected is terminal and carries a rejection reason.
	QuestionStatusRejected QuestionStatus = "rejected"
)

// Valid reports whether the status is one of the defined pipeline positions.
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionStatusAwaitingProcessor, QuestionStatusAwaitingAuthor, QuestionStatusAwaitingExplainer,
		QuestionStatusCompleted, QuestionStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further mutation is permitted.
func (s QuestionStatus) Terminal() bool {
	return s == QuestionStatusCompleted || s == QuestionStatusRejected
}

// Role identifies the stage a caller acts for.
type Role string

const (
	RoleGatherer   Role = "gatherer"
	RoleCreator    Role = "creator"
	RoleExplainer  Role = "explainer"
	RoleProcessor  Role = "processor"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether the role is a known workflow role or the super-role.
func (r Role) Valid() bool {
	switch r {
	case RoleGatherer, RoleCreator, RoleExplainer, RoleProcessor, RoleSuperAdmin:
		return true
	}
	return false
}

// HistoryAction tags a ledger entry with the transition that produced it.
type HistoryAction string

const (
	HistoryActionCreated   HistoryAction = "created"
	HistoryActionRevised   HistoryAction = "revised"
	HistoryActionExplained HistoryAction = "explained"
	HistoryActionApproved  HistoryAction = "approved"
	HistoryActionRejected  HistoryAction = "rejected"
)

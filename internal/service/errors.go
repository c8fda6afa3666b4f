package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/gema-qbank-api/internal/models"
)

// Workflow error kinds. Every error returned by the workflow services matches
// exactly one of these with errors.Is.
var (
	ErrForbidden           = errors.New("forbidden")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrReferenceNotFound   = errors.New("reference not found")
	ErrIncompleteChoiceSet = errors.New("incomplete choice set")
	ErrEmptyExplanation    = errors.New("explanation is empty")
	ErrStorageFailure      = errors.New("storage failure")
)

// WorkflowError carries the identifying detail of a failed operation.
type WorkflowError struct {
	Kind   error
	Detail string
	Err    error
}

func (e *WorkflowError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WorkflowError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether the caller may safely re-attempt the operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

func forbidden(role models.Role, op Operation) error {
	return &WorkflowError{Kind: ErrForbidden, Detail: fmt.Sprintf("role %q may not perform %s", role, op)}
}

func questionNotFound(id uint) error {
	return &WorkflowError{Kind: ErrQuestionNotFound, Detail: fmt.Sprintf("question %d", id)}
}

func invalidState(required, actual models.QuestionStatus) error {
	return &WorkflowError{
		Kind:   ErrInvalidState,
		Detail: fmt.Sprintf("requires status %s, question is %s", required, actual),
	}
}

func referenceNotFound(format string, args ...interface{}) error {
	return &WorkflowError{Kind: ErrReferenceNotFound, Detail: fmt.Sprintf(format, args...)}
}

func incompleteChoices(kind models.QuestionKind, missing []models.OptionLetter, correct models.OptionLetter) error {
	if len(missing) > 0 {
		letters := make([]string, 0, len(missing))
		for _, letter := range missing {
			letters = append(letters, string(letter))
		}
		return &WorkflowError{
			Kind:   ErrIncompleteChoiceSet,
			Detail: fmt.Sprintf("%s is missing option(s) %s", kind, strings.Join(letters, ", ")),
		}
	}
	return &WorkflowError{
		Kind:   ErrIncompleteChoiceSet,
		Detail: fmt.Sprintf("correct option %q is not a populated option of %s", correct, kind),
	}
}

func storageFailure(op string, err error) error {
	return &WorkflowError{Kind: ErrStorageFailure, Detail: op, Err: err}
}

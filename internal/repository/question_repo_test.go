package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-qbank-api/internal/models"
)

func newStoredQuestion(createdBy uint) models.Question {
	question := models.Question{
		ExamID:         1,
		SubjectID:      2,
		TopicID:        3,
		Content:        "What is 2 + 2?",
		Status:         models.QuestionStatusAwaitingProcessor,
		CreatedBy:      createdBy,
		LastModifiedBy: createdBy,
		History: []models.QuestionHistory{{
			Action:          models.HistoryActionCreated,
			PerformedByRole: models.RoleGatherer,
			PerformedBy:     createdBy,
			Timestamp:       time.Now(),
		}},
	}
	question.SetChoices(models.SingleCorrectChoice{A: "3", B: "4", C: "5", D: "6", Correct: models.OptionB})
	return question
}

func TestQuestionRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	question := newStoredQuestion(7)
	require.NoError(t, repo.Create(ctx, &question))
	require.NotZero(t, question.ID)
	require.Equal(t, uint(1), question.Version)

	stored, err := repo.GetByID(ctx, question.ID)
	require.NoError(t, err)
	require.Equal(t, "What is 2 + 2?", stored.Content)
	require.Equal(t, models.OptionB, stored.CorrectOption)
	require.Len(t, stored.History, 1)
	require.Equal(t, 1, stored.History[0].Sequence)
	require.Equal(t, models.RoleGatherer, stored.History[0].PerformedByRole)

	_, err = repo.GetByID(ctx, question.ID+100)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestQuestionRepositorySaveAppendsHistoryAndBumpsVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	question := newStoredQuestion(7)
	require.NoError(t, repo.Create(ctx, &question))

	loaded, err := repo.GetByID(ctx, question.ID)
	require.NoError(t, err)
	approver := uint(9)
	loaded.Status = models.QuestionStatusAwaitingAuthor
	loaded.ApprovedBy = &approver
	loaded.History = append(loaded.History, models.QuestionHistory{
		Action:          models.HistoryActionApproved,
		PerformedByRole: models.RoleProcessor,
		PerformedBy:     approver,
		Timestamp:       time.Now(),
	})
	require.NoError(t, repo.Save(ctx, &loaded))
	require.Equal(t, uint(2), loaded.Version)

	stored, err := repo.GetByID(ctx, question.ID)
	require.NoError(t, err)
	require.Equal(t, models.QuestionStatusAwaitingAuthor, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	require.Len(t, stored.History, 2)
	require.Equal(t, models.HistoryActionApproved, stored.History[1].Action)
	require.Equal(t, 2, stored.History[1].Sequence)
}

func TestQuestionRepositorySaveRejectsStaleVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	question := newStoredQuestion(7)
	require.NoError(t, repo.Create(ctx, &question))

	first, err := repo.GetByID(ctx, question.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, question.ID)
	require.NoError(t, err)

	first.Status = models.QuestionStatusAwaitingAuthor
	first.History = append(first.History, models.QuestionHistory{Action: models.HistoryActionApproved, PerformedByRole: models.RoleProcessor, PerformedBy: 9, Timestamp: time.Now()})
	require.NoError(t, repo.Save(ctx, &first))

	reason := "duplicate"
	second.Status = models.QuestionStatusRejected
	second.RejectionReason = &reason
	second.History = append(second.History, models.QuestionHistory{Action: models.HistoryActionRejected, PerformedByRole: models.RoleProcessor, PerformedBy: 10, Timestamp: time.Now()})
	err = repo.Save(ctx, &second)
	require.ErrorIs(t, err, ErrVersionConflict)
	require.Zero(t, second.History[1].ID)

	stored, err := repo.GetByID(ctx, question.ID)
	require.NoError(t, err)
	require.Equal(t, models.QuestionStatusAwaitingAuthor, stored.Status)
	require.Nil(t, stored.RejectionReason)
	require.Len(t, stored.History, 2)
}

func TestQuestionRepositoryListByStatusFiltersOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	mine := newStoredQuestion(7)
	theirs := newStoredQuestion(8)
	require.NoError(t, repo.Create(ctx, &mine))
	require.NoError(t, repo.Create(ctx, &theirs))

	all, err := repo.ListByStatus(ctx, models.QuestionStatusAwaitingProcessor, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	owner := uint(7)
	own, err := repo.ListByStatus(ctx, models.QuestionStatusAwaitingProcessor, &owner)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, mine.ID, own[0].ID)
	require.Len(t, own[0].History, 1)

	none, err := repo.ListByStatus(ctx, models.QuestionStatusCompleted, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

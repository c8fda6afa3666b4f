package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestCachedClassificationStoreMemoisesPositiveAnswers(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	next := &staticClassification{}
	store := NewCachedClassificationStore(next, client, time.Minute, testLogger())
	ctx := context.Background()

	ok, err := store.ExamExists(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = store.ExamExists(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, next.calls)
	require.True(t, server.Exists("classification:exam:1"))

	ok, err = store.TopicBelongsToSubject(ctx, 100, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, server.Exists("classification:subject:10:topic:100"))

	server.FastForward(2 * time.Minute)
	_, err = store.ExamExists(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, next.calls)
}

func TestCachedClassificationStoreSkipsNegativeAnswers(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	next := &staticClassification{}
	store := NewCachedClassificationStore(next, client, time.Minute, testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := store.TopicBelongsToSubject(ctx, 100, 20)
		require.NoError(t, err)
		require.False(t, ok)
	}
	require.Equal(t, 2, next.calls)
	require.False(t, server.Exists("classification:subject:20:topic:100"))
}

func TestCachedClassificationStoreFallsThroughWhenRedisDown(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()
	server.Close()

	next := &staticClassification{}
	store := NewCachedClassificationStore(next, client, time.Minute, testLogger())

	ok, err := store.SubjectExists(context.Background(), 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, next.calls)
}

func TestCachedClassificationStoreWithoutClient(t *testing.T) {
	next := &staticClassification{err: errDatabaseDown}
	store := NewCachedClassificationStore(next, nil, 0, testLogger())

	_, err := store.SubjectExists(context.Background(), 10)
	require.ErrorIs(t, err, errDatabaseDown)
}

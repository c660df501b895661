package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "persona.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	db := openTestStore(t).DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got), tt.pragma)
		assert.Equal(t, tt.want, got, tt.pragma)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.EventRepo().AppendSessionEvent(context.Background(), SessionEventData{SessionID: "a", Action: ActionStart}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	events, err := s2.EventRepo().QuerySessionEvents(context.Background(), "", QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSequence_SharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Action: ActionStart, Total: 16}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "reflection", Success: true}))
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Action: ActionComplete, Answered: 16, Total: 16}))

	sessions, err := repo.QuerySessionEvents(ctx, "s1", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, ActionComplete, sessions[0].Action, "newest first")
	assert.Equal(t, int64(3), sessions[0].Sequence)
	assert.Equal(t, int64(1), sessions[1].Sequence)

	llmEvents, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, llmEvents, 1)
	assert.Equal(t, int64(2), llmEvents[0].Sequence)
}

func TestQueryOpts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s", Action: ActionBack, Answered: i}))
	}

	limited, err := repo.QuerySessionEvents(ctx, "s", QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, 4, limited[0].Answered)

	window, err := repo.QuerySessionEvents(ctx, "s", QueryOpts{After: 1, Before: 4})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	future, err := repo.QuerySessionEvents(ctx, "s", QueryOpts{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)

	other, err := repo.QuerySessionEvents(ctx, "nope", QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "reflection",
		InputTokens: 100, OutputTokens: 40, LatencyMs: 300, Success: true,
		RequestBody: "[user]\nhi", ResponseBody: `{"headline":"x"}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "reflection",
		InputTokens: 50, OutputTokens: 10, LatencyMs: 100, ErrorMessage: "boom",
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "mock", Purpose: "other", LatencyMs: 10, Success: true,
	}))

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 3)

	first := events[2]
	got, err := repo.GetLLMEvent(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "[user]\nhi", got.RequestBody)
	assert.True(t, got.Success)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Minute)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "reflection", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 150, byPurpose[0].InputTokens)
	assert.Equal(t, int64(200), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gpt-4o-mini", byModel[0].Model)
}

func TestResults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.ResultRepo()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := &ResultRecord{SessionID: "20260301_100000", Type: "INTJ", Confidence: 72.5, ConfidenceLevel: "Strong",
		TestLength: "short", TotalResponses: 16, CompletedAt: base, Payload: json.RawMessage(`{"type":"INTJ"}`)}
	newer := &ResultRecord{ID: "abc-123", SessionID: "20260302_100000", Type: "ENFP", SecondaryType: "INFP",
		Confidence: 58, ConfidenceLevel: "Low", TestLength: "medium", TotalResponses: 44, CompletedAt: base.Add(24 * time.Hour)}
	again := &ResultRecord{ID: "abd-456", SessionID: "20260303_100000", Type: "INTJ", ConfidenceLevel: "Moderate",
		TestLength: "short", TotalResponses: 16, CompletedAt: base.Add(48 * time.Hour)}
	for _, r := range []*ResultRecord{older, newer, again} {
		require.NoError(t, repo.SaveResult(ctx, r))
	}
	assert.NotEmpty(t, older.ID)

	list, err := repo.ListResults(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "abd-456", list[0].ID)
	assert.True(t, list[2].CompletedAt.Equal(base))
	assert.JSONEq(t, `{"type":"INTJ"}`, string(list[2].Payload))

	limited, err := repo.ListResults(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, err := repo.GetResult(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "INFP", got.SecondaryType)

	_, err = repo.GetResult(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	none, err := repo.GetResult(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, none)

	counts, err := repo.TypeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"INTJ": 2, "ENFP": 1}, counts)
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "persona.db")
	require.NoError(t, EnsureDir(path))
	assert.DirExists(t, filepath.Dir(path))
}

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohv/scorj/internal/consensus"
	"github.com/sohv/scorj/internal/intent"
	"github.com/sohv/scorj/internal/scoring"
)

func reportFixture(requestID string, score int, createdAt time.Time) *scoring.Report {
	return &scoring.Report{
		RequestID:  requestID,
		FinalScore: score,
		BaseScore:  score - 4,
		Consensus: &consensus.Result{
			Level:  consensus.LevelHigh,
			Scores: map[string]int{"gemini": score, "openai": score - 8},
		},
		Intent:    &intent.Result{TotalBonus: 4},
		Elapsed:   1200 * time.Millisecond,
		CreatedAt: createdAt,
	}
}

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(context.Background(), "Backend Engineer", reportFixture("req-1", 70, base)))
	require.NoError(t, store.Record(context.Background(), "Data Engineer", reportFixture("req-2", 85, base.Add(time.Hour))))

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "req-2", entries[0].RequestID)
	assert.Equal(t, 85, entries[0].FinalScore)
	assert.Equal(t, "Data Engineer", entries[0].JobTitle)
	assert.Equal(t, "high", entries[0].ConsensusLevel)
	assert.Equal(t, 85, entries[0].JudgeScores["gemini"])
	assert.InDelta(t, 4.0, entries[0].IntentBonus, 1e-9)
	assert.EqualValues(t, 1200, entries[0].ElapsedMS)
}

func TestRecentLimit(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(context.Background(), "Job",
			reportFixture(string(rune('a'+i))+"-req", 50+i, base.Add(time.Duration(i)*time.Minute))))
	}

	entries, err := store.Recent(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestNilStoreIsTolerated(t *testing.T) {
	var store *Store

	require.NoError(t, store.Record(context.Background(), "Job", reportFixture("req", 50, time.Now())))

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, entries)

	require.NoError(t, store.Close())
}

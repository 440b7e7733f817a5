package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/entail/internal/testutil"
)

func TestWriteRun_AssignsIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id1, err := s.WriteRun(ctx, createTestRun(testutil.Epoch))
	require.NoError(t, err)
	id2, err := s.WriteRun(ctx, createTestRun(testutil.Epoch.Add(time.Second)))
	require.NoError(t, err)

	assert.Equal(t, "run-0001", id1)
	assert.Equal(t, "run-0002", id2)
}

func TestWriteRun_KeepsGivenID(t *testing.T) {
	s := createTestStore(t)

	run := createTestRun(testutil.Epoch)
	run.ID = "explicit"
	id, err := s.WriteRun(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "explicit", id)
}

func TestWriteRun_DuplicateIDRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(testutil.Epoch)
	run.ID = "dup"
	_, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	_, err = s.WriteRun(ctx, run)
	require.Error(t, err)

	results, err := s.UnitResults(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestWriteRun_InvalidOutcomeRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(testutil.Epoch)
	run.ID = "bad"
	run.Results[2].Outcome = "maybe"
	_, err := s.WriteRun(ctx, run)
	require.ErrorContains(t, err, "write unit result 3")

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "the run row must not survive a failed unit insert")
}

func TestWriteRun_CanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.WriteRun(ctx, createTestRun(testutil.Epoch))
	assert.Error(t, err)
}

package main

import (
	"testing"

	"github.com/dom/taskflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoke_AgainstTestServer(t *testing.T) {
	ts := testutil.NewTestServer(t)

	require.NoError(t, smokeCmd(NewAPIClient(ts.BaseURL())))
}

func TestSeed_CreatesAccountsAndTasks(t *testing.T) {
	ts := testutil.NewTestServer(t)

	require.NoError(t, seedCmd(NewAPIClient(ts.BaseURL()), 2, 5))

	users, total, err := ts.Repos.User.List(t.Context(), 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	for _, u := range users {
		stats, err := ts.Services.Tasks.Stats(t.Context(), u.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 5, stats.Total)
	}
}

func TestLetters(t *testing.T) {
	tests := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 28: "AB"}
	for n, want := range tests {
		assert.Equal(t, want, letters(n))
	}
}

func TestRandomTask_IsValid(t *testing.T) {
	for i := 0; i < 50; i++ {
		task := randomTask()
		assert.Contains(t, statuses, task["status"])
		assert.Contains(t, priorities, task["priority"])
		assert.LessOrEqual(t, len(task["tags"].([]string)), 2)
	}
}

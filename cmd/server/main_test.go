package main

import (
	"context"
	"testing"
	"time"

	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "migrate", "promote"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRootCmd_PromoteRequiresEmail(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"promote"})
	assert.Error(t, root.Execute())
}

func TestOpenStore_Memory(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.StoreMemory}

	repos, err := openStore(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, repos.User)
	assert.NotNil(t, repos.Task)
	assert.NoError(t, repos.Close())
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), &config.Config{StoreDriver: "sqlite"}, logging.Discard())
	assert.Error(t, err)
}

func TestNewLimiters_InProcessWithoutRedis(t *testing.T) {
	cfg := &config.Config{RateLimitMax: 5, AuthRateLimitMax: 2, RateLimitWindow: time.Minute}

	limiters, closeFn, err := newLimiters(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer closeFn()

	require.NotNil(t, limiters.API)
	require.NotNil(t, limiters.Auth)
	assert.Equal(t, 5, limiters.API.Limit)
	assert.Equal(t, 2, limiters.Auth.Limit)
	assert.NotSame(t, limiters.API.Counter, limiters.Auth.Counter)
}

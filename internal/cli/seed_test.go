package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/internal/app"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/testutil"
)

func TestSeed(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Feed:  config.FeedConfig{PageSize: 20, MaxPageSize: 100},
		Redis: config.RedisConfig{CacheTTL: time.Minute},
	}
	a := app.New(cfg, db, nil)

	stats, err := Seed(context.Background(), a, SeedOptions{Users: 5, PostsPerUser: 2, MaxFollows: 3, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Users)
	assert.Equal(t, 10, stats.Posts)

	var follows, selfFollows, selfNotes int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&follows).Error)
	require.NoError(t, db.Model(&model.Follow{}).Where("follower_id = followee_id").Count(&selfFollows).Error)
	require.NoError(t, db.Model(&model.Notification{}).Where("recipient_id = actor_id").Count(&selfNotes).Error)
	assert.Equal(t, int64(stats.Follows), follows)
	assert.Zero(t, selfFollows)
	assert.Zero(t, selfNotes)
}

func TestAlnum(t *testing.T) {
	assert.Equal(t, "OConner12", alnum("O'Conner-12"))
	assert.Equal(t, "user", alnum("--"))
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "seed"}, names)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "socialctl")
}

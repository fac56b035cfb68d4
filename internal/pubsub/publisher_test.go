package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/internal/model"
)

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "notifications:user:bob", UserChannel("bob"))
}

func TestPublisher_NilClientIsNoop(t *testing.T) {
	p := NewPublisher(nil)
	assert.NoError(t, p.PublishNotification(context.Background(), &model.Notification{RecipientID: "bob"}))
	assert.Nil(t, p.Subscribe(context.Background(), "bob"))
}

func TestPublisher_PublishNotification(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	p := NewPublisher(rdb)
	ctx := context.Background()
	sub := p.Subscribe(ctx, "bob")
	require.NotNil(t, sub)
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	n := &model.Notification{ID: "n1", RecipientID: "bob", ActorID: "alice", Verb: model.VerbLiked}
	require.NoError(t, p.PublishNotification(ctx, n))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "notifications:user:bob", msg.Channel)
		var got model.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "n1", got.ID)
		assert.Equal(t, "alice", got.ActorID)
		assert.Equal(t, model.VerbLiked, got.Verb)
	case <-time.After(time.Second):
		t.Fatal("notification was not published")
	}
}

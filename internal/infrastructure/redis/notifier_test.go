package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream captura las llamadas a XAdd sin servidor Redis.
type fakeStream struct {
	redis.Cmdable
	args []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func TestStreamNotifier_Notify(t *testing.T) {
	fake := &fakeStream{}
	n := NewStreamNotifier(fake, "")
	n.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, n.Notify(context.Background(), "u1", "Movimiento #7 registrado", "movement_created"))
	require.Len(t, fake.args, 1)
	a := fake.args[0]
	assert.Equal(t, DefaultStream, a.Stream)
	values, ok := a.Values.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "u1", values["user_id"])
	assert.Equal(t, "movement_created", values["type"])
	assert.Equal(t, "2025-03-01T10:00:00Z", values["sent_at"])
}

func TestStreamNotifier_Error(t *testing.T) {
	fake := &fakeStream{err: errors.New("down")}
	n := NewStreamNotifier(fake, "s")
	err := n.Notify(context.Background(), "u1", "m", "k")
	assert.ErrorContains(t, err, "xadd s")
}

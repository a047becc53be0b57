package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingEvent struct{}

func (pingEvent) Name() string { return "ping" }

func TestBus_PublishCallsEverySubscriber(t *testing.T) {
	bus := New(zap.NewNop())
	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("ping", func(ctx context.Context, e Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}
	bus.Subscribe("other", func(ctx context.Context, e Event) error {
		t.Error("не должен вызываться")
		return nil
	})

	bus.Publish(context.Background(), pingEvent{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Wait(ctx))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestBus_ListenerFailuresAreIsolated(t *testing.T) {
	bus := New(zap.NewNop())
	var ok int32
	bus.Subscribe("ping", func(ctx context.Context, e Event) error { return errors.New("boom") })
	bus.Subscribe("ping", func(ctx context.Context, e Event) error { panic("boom") })
	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		atomic.StoreInt32(&ok, 1)
		return nil
	})

	bus.Publish(context.Background(), pingEvent{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Wait(ctx))
	assert.EqualValues(t, 1, atomic.LoadInt32(&ok))
}

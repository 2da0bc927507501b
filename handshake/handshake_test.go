package handshake

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/glide-bridge/errors"
)

func TestHandshake_Ready(t *testing.T) {
	h := New()
	assert.Equal(t, StateStarting, h.State())

	go h.Callback()("/tmp/glide-socket-1", nil)

	addr, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/glide-socket-1", addr)
	assert.Equal(t, StateConsumed, h.State())
}

func TestHandshake_Failed(t *testing.T) {
	h := New()
	cause := errors.TransportStartup("bind failed", stderrors.New("permission denied"))

	require.True(t, h.Complete("", cause))
	assert.Equal(t, StateFailed, h.State())

	addr, err := h.Wait(context.Background())
	assert.Empty(t, addr)
	assert.Same(t, cause, err)
}

func TestHandshake_FirstCompletionWins(t *testing.T) {
	h := New()

	var wg sync.WaitGroup
	wins := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			addr := "addr-" + string(rune('a'+id))
			if h.Complete(addr, nil) {
				wins <- addr
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)

	addr, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, winners[0], addr)

	assert.False(t, h.Complete("late", nil))
}

func TestHandshake_SecondWaitConsumed(t *testing.T) {
	h := New()
	h.Complete("a", nil)

	_, err := h.Wait(context.Background())
	require.NoError(t, err)

	_, err = h.Wait(context.Background())
	assert.Same(t, ErrConsumed, err)
}

func TestHandshake_ConcurrentWaitersReleasedOnce(t *testing.T) {
	h := New()

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := h.Wait(context.Background())
			results <- err
		}()
	}

	time.Sleep(10 * time.Millisecond)
	h.Complete("a", nil)

	var consumed, ok int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			ok++
		} else if err == ErrConsumed {
			consumed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, consumed)
}

func TestHandshake_WaitTimeout(t *testing.T) {
	h := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Wait(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.KindTransportStartup, errors.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.False(t, h.Complete("too late", nil))
	select {
	case <-h.Done():
	default:
		t.Fatal("Done not closed after timeout")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "consumed", StateConsumed.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestHandshake_AbandonUnblocksWait(t *testing.T) {
	h := New()
	done := make(chan error, 1)
	go func() {
		_, err := h.Wait(context.Background())
		done <- err
	}()

	cause := stderrors.New("bind exploded")
	require.True(t, h.Abandon(cause))

	select {
	case err := <-done:
		assert.Equal(t, errors.KindTransportStartup, errors.KindOf(err))
		assert.ErrorIs(t, err, cause)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Abandon")
	}
	assert.Equal(t, StateConsumed, h.State())
}

func TestHandshake_AbandonAfterComplete(t *testing.T) {
	h := New()
	require.True(t, h.Complete("/tmp/glide-socket-3", nil))
	assert.False(t, h.Abandon(nil))

	addr, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/glide-socket-3", addr)
}

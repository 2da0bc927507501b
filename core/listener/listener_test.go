package listener

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/handshake"
)

type counters struct {
	mu          sync.Mutex
	connections int
	clients     int
}

func (c *counters) ConnectionOpened() { c.add(&c.connections, 1) }
func (c *counters) ConnectionClosed() { c.add(&c.connections, -1) }
func (c *counters) ClientAttached()   { c.add(&c.clients, 1) }
func (c *counters) ClientDetached()   { c.add(&c.clients, -1) }

func (c *counters) add(n *int, d int) {
	c.mu.Lock()
	*n += d
	c.mu.Unlock()
}

func (c *counters) get() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connections, c.clients
}

// shortDir keeps socket paths under the platform's sun_path limit.
func shortDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "gb")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func start(t *testing.T, l *Listener) (string, error) {
	t.Helper()
	hs := handshake.New()
	l.Start(hs.Callback())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Wait(ctx)
}

func TestSocketPath(t *testing.T) {
	p1 := SocketPath("/tmp")
	p2 := SocketPath("/tmp")
	assert.True(t, strings.HasPrefix(p1, "/tmp/glide-socket-"))
	assert.NotEqual(t, p1, p2)
}

func TestListener_StartServesHealth(t *testing.T) {
	c := &counters{}
	l := New(shortDir(t), c)

	path, err := start(t, l)
	require.NoError(t, err)
	assert.Equal(t, path, l.Path())

	again, err := start(t, l)
	require.NoError(t, err)
	assert.Equal(t, path, again, "second start reports the existing socket")

	conn, err := grpc.NewClient("unix://"+path, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	assert.Eventually(t, func() bool {
		conns, clients := c.get()
		return conns == 1 && clients == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		conns, clients := c.get()
		return conns == 0 && clients == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, l.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket file removed on close")
}

func TestListener_ConcurrentStart(t *testing.T) {
	l := New(shortDir(t), nil)
	defer l.Close()

	const n = 5
	paths := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := start(t, l)
			assert.NoError(t, err)
			paths <- path
		}()
	}
	wg.Wait()
	close(paths)

	var first string
	for p := range paths {
		if first == "" {
			first = p
		}
		assert.Equal(t, first, p)
	}
}

func TestListener_StartBindFailure(t *testing.T) {
	l := New("/nonexistent/glide-bridge-test", nil)

	_, err := start(t, l)
	require.Error(t, err)
	assert.Equal(t, errors.KindTransportStartup, errors.KindOf(err))
	assert.Empty(t, l.Path())
}

func TestListener_StartAfterClose(t *testing.T) {
	l := New(shortDir(t), nil)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err := start(t, l)
	assert.Equal(t, errors.KindTransportStartup, errors.KindOf(err))
}

// conflictingOptions makes grpc.NewServer panic.
func conflictingOptions() Option {
	noop := func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		return h(ctx, req)
	}
	return WithServerOptions(grpc.UnaryInterceptor(noop), grpc.UnaryInterceptor(noop))
}

func TestListener_BindPanicReportsFailure(t *testing.T) {
	dir := shortDir(t)
	l := New(dir, nil, conflictingOptions())
	t.Cleanup(func() { l.Close() })

	_, err := start(t, l)
	require.Error(t, err)
	assert.Equal(t, errors.KindTransportStartup, errors.KindOf(err))
	assert.ErrorContains(t, err, "panicked while binding")
	assert.Empty(t, l.Path())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "the half-bound socket is removed")

	_, err = start(t, l)
	assert.Equal(t, errors.KindTransportStartup, errors.KindOf(err), "a later Start retries and reports again")
}

func TestListener_CallbackPanicDoesNotStopOthers(t *testing.T) {
	l := New(shortDir(t), nil)
	t.Cleanup(func() { l.Close() })

	hs := handshake.New()
	l.Start(func(string, error) { panic("callback exploded") })
	l.Start(hs.Callback())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	addr, err := hs.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, l.Path(), addr)
}

// Package listener runs the bridge's background Unix-socket transport.
//
// The socket serves gRPC with the standard health service. Start binds on
// a goroutine and reports the bound path, or the bind failure, through a
// callback so the caller can wait on it with a handshake.
package listener

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wippyai/glide-bridge/errors"
)

// Callback receives the outcome of Start.
type Callback func(addr string, err error)

// Counters receives connection lifecycle notifications.
type Counters interface {
	ConnectionOpened()
	ConnectionClosed()
	ClientAttached()
	ClientDetached()
}

// Listener owns the socket and the server behind it.
type Listener struct {
	counters   Counters
	server     *grpc.Server
	health     *health.Server
	lis        net.Listener
	dir        string
	path       string
	serverOpts []grpc.ServerOption
	pending    []Callback
	wg         sync.WaitGroup
	mu         sync.Mutex
	binding    bool
	closed     bool
}

// Option configures a Listener.
type Option func(*Listener)

// WithServerOptions adds options to the gRPC server served on the socket.
func WithServerOptions(opts ...grpc.ServerOption) Option {
	return func(l *Listener) {
		l.serverOpts = append(l.serverOpts, opts...)
	}
}

// New returns a listener that will create its socket in dir, or in the
// system temp directory when dir is empty. counters may be nil.
func New(dir string, counters Counters, opts ...Option) *Listener {
	if dir == "" {
		dir = os.TempDir()
	}
	l := &Listener{dir: dir, counters: counters}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SocketPath returns a fresh socket path in dir.
func SocketPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("glide-socket-%d-%s", os.Getpid(), uuid.NewString()))
}

// Start binds the socket in the background and invokes cb exactly once
// with the result. After a successful bind later calls report the same
// path. A failed bind lets a later Start try again.
func (l *Listener) Start(cb Callback) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.closed:
		go notify([]Callback{cb}, "", errors.TransportStartup("listener is closed", nil))
		return
	case l.path != "":
		go notify([]Callback{cb}, l.path, nil)
		return
	case l.binding:
		l.pending = append(l.pending, cb)
		return
	}

	l.binding = true
	l.pending = append(l.pending, cb)
	l.wg.Add(1)
	go l.bind()
}

// bind reports to every queued callback on every exit path, including a
// panic or runtime.Goexit before the result is known.
func (l *Listener) bind() {
	defer l.wg.Done()

	var (
		lis      net.Listener
		reported bool
	)
	defer func() {
		if reported {
			return
		}
		detail := "socket listener exited while binding"
		if r := recover(); r != nil {
			Logger().Error("socket listener panicked while binding", zap.Any("panic", r), zap.Stack("stack"))
			detail = fmt.Sprintf("socket listener panicked while binding: %v", r)
		}
		if lis != nil {
			_ = lis.Close()
		}
		l.fail(errors.TransportStartup(detail, nil))
	}()

	path := SocketPath(l.dir)
	var err error
	lis, err = net.Listen("unix", path)
	if err != nil {
		Logger().Error("socket listener failed to bind", zap.String("path", path), zap.Error(err))
		reported = true
		l.fail(errors.TransportStartup(fmt.Sprintf("failed to bind %s", path), err))
		return
	}

	opts := append([]grpc.ServerOption{grpc.StatsHandler(&connStats{counters: l.counters})}, l.serverOpts...)
	server := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		server.Stop()
		_ = lis.Close()
		reported = true
		l.fail(errors.TransportStartup("listener closed while binding", nil))
		return
	}
	l.binding = false
	pending := l.pending
	l.pending = nil
	l.lis, l.server, l.health, l.path = lis, server, hs, path
	l.mu.Unlock()
	reported = true

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := server.Serve(lis); err != nil {
			Logger().Warn("socket listener stopped", zap.String("path", path), zap.Error(err))
		}
	}()

	Logger().Info("socket listener ready", zap.String("path", path))
	notify(pending, path, nil)
}

// fail reports err to every queued callback and clears the bind in
// progress.
func (l *Listener) fail(err error) {
	l.mu.Lock()
	l.binding = false
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()
	notify(pending, "", err)
}

// notify invokes each callback once. A panicking callback is logged and
// does not stop the rest.
func notify(pending []Callback, addr string, err error) {
	for _, cb := range pending {
		func() {
			defer func() {
				if r := recover(); r != nil {
					Logger().Error("listener callback panicked", zap.Any("panic", r), zap.Stack("stack"))
				}
			}()
			cb(addr, err)
		}()
	}
}

// Path returns the bound socket path, or "" before a successful Start.
func (l *Listener) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Close stops the server and removes the socket file.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	server, hs, path := l.server, l.health, l.path
	l.mu.Unlock()

	if hs != nil {
		hs.Shutdown()
	}
	if server != nil {
		server.GracefulStop()
	}
	l.wg.Wait()

	if path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

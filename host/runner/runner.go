// Package runner supervises the long-running parts of the host: board
// reader, MQTT bridge and HTTP API.
package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// Runnable runs until ctx is done or it fails.
type Runnable interface {
	Run(ctx context.Context) error
}

// Func adapts a function to Runnable.
type Func func(ctx context.Context) error

func (f Func) Run(ctx context.Context) error { return f(ctx) }

type named struct {
	Runnable
	name string
}

// Named attaches a name used in logs.
func Named(name string, r Runnable) Runnable {
	return &named{Runnable: r, name: name}
}

type result struct {
	name string
	err  error
}

// Runner runs Runnables and collects their errors. The first one to stop
// cancels the others. Runnables never block on exit, so Wait is optional.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	count  int

	wg      sync.WaitGroup
	mu      sync.Mutex
	results []result
	exitCh  chan struct{}
}

// New creates a runner under ctx.
func New(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		ctx:    ctx,
		cancel: cancel,
		exitCh: make(chan struct{}),
	}
}

// Context is cancelled when the runner stops.
func (r *Runner) Context() context.Context { return r.ctx }

// Stop cancels every runnable. Wait still collects them.
func (r *Runner) Stop() { r.cancel() }

// HandleSignals stops on Ctrl-C and SIGTERM. A second signal forces Wait
// to return.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go spawns runnables. Not safe to call after Wait.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, rn := range runnables {
		name := strconv.Itoa(r.count)
		if n, ok := rn.(*named); ok {
			name = n.name
		}
		r.count++
		r.wg.Add(1)
		go func(rn Runnable, name string) {
			defer r.wg.Done()
			glog.V(2).Infof("runner %s started", name)
			err := rn.Run(r.ctx)
			glog.V(2).Infof("runner %s stopped: %v", name, err)
			r.cancel()
			r.mu.Lock()
			r.results = append(r.results, result{name: name, err: err})
			r.mu.Unlock()
		}(rn, name)
	}
	return r
}

// Wait blocks until every runnable stopped and joins their errors.
// Cancellation is not an error.
func (r *Runner) Wait() error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-r.exitCh:
		return errors.New("forced exit")
	case <-done:
	}
	r.cancel()

	var errs []error
	for _, res := range r.finished() {
		if res.err != nil && !errors.Is(res.err, context.Canceled) {
			glog.Errorf("%s: %v", res.name, res.err)
			errs = append(errs, res.err)
		}
	}
	return errors.Join(errs...)
}

// finished returns the results collected so far, in stop order.
func (r *Runner) finished() []result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]result(nil), r.results...)
}

// RunWithContextCancel runs fn, which takes no context. onCancel is
// called only when ctx ends first and must make fn return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return context.Canceled
	case err := <-errCh:
		return err
	}
}

// RunWithContextCloser closes closer on cancel or when fn returns.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var closed bool
	err := RunWithContextCancel(ctx, func() {
		closer.Close()
		closed = true
	}, fn)
	if !closed {
		closer.Close()
	}
	return err
}

package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFirstFailureStopsAll(t *testing.T) {
	boom := errors.New("boom")
	r := New(context.Background())
	var stopped atomic.Int32
	waiter := Func(func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Add(1)
		return ctx.Err()
	})
	r.Go(Named("a", waiter), Named("b", waiter), Func(func(context.Context) error { return boom }))

	err := r.Wait()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), stopped.Load())
}

func TestCancelIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(ctx).Go(Func(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	assert.NoError(t, r.Wait())
	assert.Error(t, r.Context().Err())
}

func TestWaitWithoutRunnables(t *testing.T) {
	assert.NoError(t, New(context.Background()).Wait())
}

func TestRunnableExitsWithoutWait(t *testing.T) {
	r := New(context.Background())
	release := make(chan struct{})
	r.Go(Named("early", Func(func(context.Context) error {
		<-release
		return errors.New("gone")
	})))
	close(release)

	// nobody calls Wait; the goroutine must still finish
	assert.Eventually(t, func() bool { return len(r.finished()) == 1 }, time.Second, time.Millisecond)
	assert.Error(t, r.Context().Err(), "a stopped runnable cancels the rest")
}

func TestStopThenWait(t *testing.T) {
	r := New(context.Background())
	r.Go(Func(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Stop()
	assert.NoError(t, r.Wait())
	assert.Len(t, r.finished(), 1)
}

type closer struct{ closed chan struct{} }

func (c *closer) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	c := &closer{closed: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// fn blocks until closed, like a listener
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.closed
		return errors.New("use of closed connection")
	})
	assert.ErrorIs(t, err, context.Canceled)

	c = &closer{closed: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), c, func() error { return nil })
	assert.NoError(t, err)
	select {
	case <-c.closed:
	default:
		t.Fatal("closer not closed after fn returned")
	}
}

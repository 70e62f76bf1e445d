package graceful

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestContext_CanceledOnSignal(t *testing.T) {
	ctx, cancel := Context(context.Background(), zap.NewNop())
	defer cancel()

	go func() {
		time.Sleep(100 * time.Millisecond)
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
			t.Errorf("failed to send SIGINT: %v", err)
		}
	}()

	select {
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", ctx.Err())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for context to be canceled")
	}
}

func TestContext_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := Context(parent, zap.NewNop())
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("child context not canceled with parent")
	}
}

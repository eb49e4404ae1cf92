package cli

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx := SetupSignalHandler()

	select {
	case <-ctx.Done():
		t.Error("context should not be cancelled initially")
	default:
	}

	if ctx.Done() == nil {
		t.Error("context should have a Done channel")
	}
}

func TestWaitForShutdown(t *testing.T) {
	sigChan := WaitForShutdown()

	if sigChan == nil {
		t.Fatal("WaitForShutdown() returned nil channel")
	}

	select {
	case <-sigChan:
		t.Error("signal channel should be empty initially")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestWaitForShutdownReceivesSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping signal test in short mode")
	}

	sigChan := WaitForShutdown()

	go func() {
		time.Sleep(50 * time.Millisecond)
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Signal(syscall.SIGTERM)
	}()

	select {
	case sig := <-sigChan:
		if sig != syscall.SIGTERM {
			t.Errorf("expected SIGTERM, got %v", sig)
		}
	case <-time.After(200 * time.Millisecond):
		t.Skip("signal not received within timeout (this is okay)")
	}
}

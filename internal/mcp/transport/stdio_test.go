package transport

import (
	"context"
	"testing"
	"time"
)

func TestStdioNotStarted(t *testing.T) {
	tr := NewStdio("echo", []string{"test"})

	ctx := context.Background()

	if err := tr.Send(ctx, []byte("test")); err != ErrNotStarted {
		t.Errorf("Send before start: got %v, want ErrNotStarted", err)
	}
	if _, err := tr.Receive(ctx); err != ErrNotStarted {
		t.Errorf("Receive before start: got %v, want ErrNotStarted", err)
	}
}

func TestStdioOptions(t *testing.T) {
	env := map[string]string{"TEST_VAR": "test_value"}
	workDir := "/tmp"

	tr := NewStdio("echo", []string{"test"}, WithEnv(env), WithWorkDir(workDir))

	if tr.env["TEST_VAR"] != "test_value" {
		t.Errorf("Env not set correctly")
	}
	if tr.workDir != workDir {
		t.Errorf("WorkDir not set correctly")
	}
}

func TestStdioStartAndCommunicate(t *testing.T) {
	// cat echoes whatever we send, which is enough to exercise both pipes.
	tr := NewStdio("cat", nil)

	if err := tr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	message := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
	if err := tr.Send(ctx, []byte(message)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	data, err := tr.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if string(data) != message {
		t.Errorf("Received data mismatch: got %q, want %q", string(data), message)
	}
}

func TestStdioClose(t *testing.T) {
	tr := NewStdio("cat", nil)

	if err := tr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ctx := context.Background()

	if err := tr.Send(ctx, []byte("test")); err != ErrClosed {
		t.Errorf("Send after close: got %v, want ErrClosed", err)
	}
	if _, err := tr.Receive(ctx); err != ErrClosed {
		t.Errorf("Receive after close: got %v, want ErrClosed", err)
	}
}

func TestStdioDoubleStart(t *testing.T) {
	tr := NewStdio("cat", nil)

	if err := tr.Start(); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	defer tr.Close()

	if err := tr.Start(); err != nil {
		t.Errorf("second Start should be a no-op: %v", err)
	}
}

func TestStdioDoubleClose(t *testing.T) {
	tr := NewStdio("cat", nil)

	if err := tr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("second Close should be a no-op: %v", err)
	}
}

func TestStdioCanceledContext(t *testing.T) {
	tr := NewStdio("cat", nil)

	if err := tr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := tr.Send(ctx, []byte("test")); err != context.Canceled {
		t.Errorf("Send with canceled context: got %v, want context.Canceled", err)
	}
	if _, err := tr.Receive(ctx); err != context.Canceled {
		t.Errorf("Receive with canceled context: got %v, want context.Canceled", err)
	}
}

package logger

import "testing"

func TestInit(t *testing.T) {
	if err := Init("debug", true); err != nil {
		t.Fatalf("init: %v", err)
	}
	Debug("debug %d", 1)
	Info("info %s", "x")
	Warn("warn")

	if err := Init("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	InitNop()
	Error("nop %v", nil)
}

func TestSetServiceName(t *testing.T) {
	old := SetServiceName("sweep_test")
	defer SetServiceName(old)
	if prev := SetServiceName("again"); prev != "sweep_test" {
		t.Fatalf("got %s", prev)
	}
}

package logger

import "testing"

func TestNew_JSON(t *testing.T) {
	log, err := New("debug", true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
	log.Debug("test message")
}

func TestNew_Console(t *testing.T) {
	log, err := New("info", false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	log, err := New("verbose", true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if !log.Core().Enabled(0) { // InfoLevel == 0
		t.Error("expected info level enabled")
	}
}

func TestMust(t *testing.T) {
	if log := Must("info", false); log == nil {
		t.Fatal("expected non-nil logger")
	}
}

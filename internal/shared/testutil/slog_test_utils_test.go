package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandlerSharesStore(t *testing.T) {
	logger, logs := NewTestLogger(t)
	component := logger.With(slog.String("component", "extractor"))

	logger.Info("root message")
	component.Warn("component message", slog.Int("row", 3))

	if logs.Count() != 2 {
		t.Fatalf("Expected 2 records, got %d", logs.Count())
	}
	AssertLogContains(t, logs, slog.LevelWarn, "component message")
	AssertLogAttr(t, logs, "component", "extractor")
	AssertLogAttr(t, logs, "row", int64(3))
	AssertNoErrors(t, logs)
}

func TestBufferedSlogHandlerGroup(t *testing.T) {
	logger, logs := NewTestLogger(t)

	logger.WithGroup("report").Info("built", slog.String("exchange", "A"))

	if !logs.ContainsAttr("report.exchange", "A") {
		t.Errorf("Expected grouped attribute report.exchange=A")
	}

	logs.Clear()
	if logs.Count() != 0 {
		t.Errorf("Expected no records after Clear, got %d", logs.Count())
	}
}

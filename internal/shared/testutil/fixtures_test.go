package testutil

import (
	"os"
	"strings"
	"testing"
)

func TestWriteBhavcopy(t *testing.T) {
	path := WriteBhavcopy(t, SampleRowsA)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Errorf("Expected 4 lines, got %d", len(lines))
	}
	if lines[0] != HeaderA {
		t.Errorf("Expected header first, got %q", lines[0])
	}
}

func TestWriteRegistry(t *testing.T) {
	path := WriteRegistry(t, "#comment", "Alpha:AAA;CCC")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	if string(data) != "#comment\nAlpha:AAA;CCC\n" {
		t.Errorf("Unexpected registry content %q", string(data))
	}
}

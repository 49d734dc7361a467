package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "comicvault.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"all with zero", 0, all},
		{"last three", 3, all[7:]},
		{"exact", 10, all},
		{"more than file", 50, all},
		{"one", 1, []string{"Line 10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.n)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Read(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil || lines != nil {
		t.Fatalf("Read on missing file = %v, %v", lines, err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`ts=2026-10-18T09:00:00Z level=warn msg="status poll failed"`, "warn"},
		{`ts=2026-10-18T09:00:00Z level=INFO msg=ok`, "info"},
		{`{"ts":"2026-10-18T09:00:00Z","level":"error","msg":"delete failed"}`, "error"},
		{`{"broken`, ""},
		{`plain text`, ""},
	}
	for _, tt := range tests {
		if got := Level(tt.line); got != tt.want {
			t.Errorf("Level(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		"level=debug msg=a",
		"level=info msg=b",
		"level=warn msg=c",
		"level=error msg=d",
		"stack trace line",
	}
	got := Filter(lines, "warn")
	want := []string{"level=warn msg=c", "level=error msg=d", "stack trace line"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter = %v, want %v", got, want)
	}
	if got := Filter(lines, ""); len(got) != len(lines) {
		t.Fatalf("empty level filtered lines: %v", got)
	}
}

func TestColorize_KeepsText(t *testing.T) {
	line := "level=error msg=boom"
	if !strings.Contains(Colorize(line), "msg=boom") {
		t.Fatalf("Colorize lost the text: %q", Colorize(line))
	}
	if Colorize("plain") != "plain" {
		t.Fatal("unleveled line was styled")
	}
}

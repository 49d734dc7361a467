package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Read returns the last n lines of the file at path; n <= 0 returns every
// line. A missing file has no lines.
func Read(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ring []string
	start := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if n <= 0 || len(ring) < n {
			ring = append(ring, line)
			continue
		}
		ring[start] = line
		start = (start + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return append(ring[start:], ring[:start]...), nil
}

// Level extracts the level of a log line written by either handler:
// "level=warn" in console format, "level":"warn" in JSON.
func Level(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var rec struct {
			Level string `json:"level"`
		}
		if err := json.Unmarshal([]byte(trimmed), &rec); err == nil {
			return strings.ToLower(rec.Level)
		}
		return ""
	}
	for _, field := range strings.Fields(trimmed) {
		if v, ok := strings.CutPrefix(field, "level="); ok {
			return strings.ToLower(strings.Trim(v, `"`))
		}
	}
	return ""
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Filter keeps lines at or above minLevel. Lines without a recognizable
// level are kept. An empty or unknown minLevel keeps everything.
func Filter(lines []string, minLevel string) []string {
	floor, ok := levelRank[strings.ToLower(strings.TrimSpace(minLevel))]
	if !ok {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		rank, known := levelRank[Level(line)]
		if !known || rank >= floor {
			out = append(out, line)
		}
	}
	return out
}

var levelStyles = map[string]lipgloss.Style{
	"debug": lipgloss.NewStyle().Faint(true),
	"warn":  lipgloss.NewStyle().Foreground(lipgloss.Color("#dbc074")),
	"error": lipgloss.NewStyle().Foreground(lipgloss.Color("#c94f6d")),
}

// Colorize styles a line by its level for terminal output.
func Colorize(line string) string {
	if style, ok := levelStyles[Level(line)]; ok {
		return style.Render(line)
	}
	return line
}

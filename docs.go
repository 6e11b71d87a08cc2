package cliconf

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnitDoc extracts the leading comment of a unit file. JavaScript units may
// start with a block comment or a run of line comments; YAML units with a run
// of # lines. An empty string means the unit is undocumented.
func UnitDoc(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cliconf: read unit: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js":
		return jsLeadingComment(src), nil
	case ".yaml", ".yml":
		return lineComments(src, "#"), nil
	default:
		return "", nil
	}
}

// Summary returns the first paragraph of doc joined on a single line.
func Summary(doc string) string {
	doc = strings.TrimSpace(doc)
	if first, _, ok := strings.Cut(doc, "\n\n"); ok {
		doc = first
	}
	return strings.Join(strings.Fields(doc), " ")
}

func jsLeadingComment(src []byte) string {
	trimmed := bytes.TrimLeft(src, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("/*")) {
		end := bytes.Index(trimmed, []byte("*/"))
		if end < 0 {
			return ""
		}
		body := string(trimmed[2:end])
		lines := strings.Split(body, "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			line = strings.TrimPrefix(line, "*")
			lines[i] = strings.TrimSpace(line)
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}
	return lineComments(trimmed, "//")
}

func lineComments(src []byte, marker string) string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" && len(lines) == 0 {
			continue
		}
		if !strings.HasPrefix(line, marker) {
			break
		}
		lines = append(lines, strings.TrimSpace(strings.TrimPrefix(line, marker)))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

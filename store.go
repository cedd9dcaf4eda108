package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Filenames carry a human-readable local timestamp, 12-hour clock with an
// AM/PM marker.
const stampLayout = "2006-01-02-03-04-05PM"

// Store writes proxy sets under one output directory.
type Store struct {
	Dir string
}

// Save writes one endpoint per line to <dir>/<prefix>_<timestamp>.txt and
// returns the path. The directory is created on first use.
func (s Store) Save(prefix string, endpoints []Endpoint) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.txt", prefix, time.Now().Format(stampLayout))
	path := filepath.Join(s.Dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, ep := range endpoints {
		if _, err := writer.WriteString(ep.String() + "\n"); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	return path, nil
}

// ReadLines loads a saved list, or any candidate file, as trimmed non-empty
// lines ready to feed into a Checker.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

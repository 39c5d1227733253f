/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: result_writer.go
Description: Writes validation results (summaries, metrics, profiles) as JSON
files into a results directory, one subdirectory per result kind, with
timestamped file names tagged by the comparison run.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteResult writes result to <dir>/<kind>/<timestamp>_<kind>_<run>.json and
// returns the file path. run is shortened to its first eight characters.
func WriteResult(dir, kind, run string, result interface{}) (string, error) {
	kindDir := filepath.Join(dir, kind)
	if err := os.MkdirAll(kindDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	if len(run) > 8 {
		run = run[:8]
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(kindDir, fmt.Sprintf("%s_%s_%s.json", timestamp, kind, run))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}
	return path, nil
}

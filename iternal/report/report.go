// Package report writes scenario results to disk.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfczx/dealls-e2e/iternal/scenario"
)

// Record is the stored form of a scenario.Result.
type Record struct {
	ID         string         `json:"id"`
	Scenario   string         `json:"scenario"`
	Keyword    string         `json:"keyword"`
	JobTitle   string         `json:"job_title"`
	JobURL     string         `json:"job_url,omitempty"`
	State      scenario.State `json:"state"`
	Passed     bool           `json:"passed"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Screenshot string         `json:"screenshot,omitempty"`
}

func FromResult(r scenario.Result) Record {
	rec := Record{
		ID:         r.ID,
		Scenario:   r.Scenario,
		Keyword:    r.Keyword,
		JobTitle:   r.JobTitle,
		JobURL:     r.JobURL,
		State:      r.State,
		Passed:     r.Passed(),
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Screenshot: r.Screenshot,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

func Save(filename string, results []scenario.Result) error {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		records = append(records, FromResult(r))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(filename, append(data, '\n'), 0o644)
}

func Load(filename string) ([]Record, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", filename, err)
	}
	return records, nil
}

// SaveURLs writes one URL per line.
func SaveURLs(filename string, urls []string) error {
	content := strings.Join(urls, "\n")
	return os.WriteFile(filename, []byte(content), 0o644)
}

func LoadURLs(filename string) ([]string, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	urls := strings.TrimSpace(string(bytes))
	if urls == "" {
		return []string{}, nil
	}

	return strings.Split(urls, "\n"), nil
}

// JobURLs returns the job URL of every result that got that far.
func JobURLs(results []scenario.Result) []string {
	var urls []string
	for _, r := range results {
		if r.JobURL != "" {
			urls = append(urls, r.JobURL)
		}
	}
	return urls
}

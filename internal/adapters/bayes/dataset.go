package bayes

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads a labeled spam/ham corpus from a CSV file. The loader
// accepts either (label, text) or (text, label) column order, detected from
// the header row; a label counts as spam when it contains "spam".
func LoadCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	labelCol, textCol, err := detectColumns(header)
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row: %w", err)
		}
		if len(record) <= labelCol || len(record) <= textCol {
			continue
		}
		text := strings.TrimSpace(record[textCol])
		if text == "" {
			continue
		}
		samples = append(samples, Sample{
			Text: text,
			Spam: strings.Contains(strings.ToLower(record[labelCol]), "spam"),
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("dataset %s contains no usable rows", path)
	}
	return samples, nil
}

func detectColumns(header []string) (labelCol, textCol int, err error) {
	labelCol, textCol = -1, -1
	for i, name := range header {
		switch {
		case containsAny(name, "label", "spam", "type", "category"):
			if labelCol < 0 {
				labelCol = i
			}
		case containsAny(name, "text", "message", "content", "body"):
			if textCol < 0 {
				textCol = i
			}
		}
	}
	if labelCol < 0 || textCol < 0 {
		return 0, 0, fmt.Errorf("could not find label and text columns in header %v", header)
	}
	return labelCol, textCol, nil
}

func containsAny(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

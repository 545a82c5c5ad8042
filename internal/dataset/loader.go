// Package dataset reads support emails from a CSV export.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

var requiredColumns = []string{"sender", "subject", "body"}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Loader parses CSV files with a sender,subject,body,sent_date header
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new dataset loader
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile reads every message in the CSV file at path
func (l *Loader) LoadFile(path string) ([]core.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	msgs, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	l.logger.Info("Dataset loaded", zap.String("path", path), zap.Int("messages", len(msgs)))
	return msgs, nil
}

// Load reads messages from r. Rows missing a required column are skipped;
// an unparseable sent_date leaves ReceivedAt zero.
func (l *Loader) Load(r io.Reader) ([]core.Message, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("dataset is missing column %q", name)
		}
	}
	dateCol, hasDate := columns["sent_date"]

	var msgs []core.Message
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		if !hasColumns(row, columns) {
			l.logger.Warn("Skipping incomplete dataset row", zap.Int("line", line))
			continue
		}

		msg := core.Message{
			Sender:  strings.TrimSpace(row[columns["sender"]]),
			Subject: strings.TrimSpace(row[columns["subject"]]),
			Body:    strings.TrimSpace(row[columns["body"]]),
		}
		if hasDate && dateCol < len(row) {
			if ts, ok := parseDate(row[dateCol]); ok {
				msg.ReceivedAt = ts
			} else {
				l.logger.Warn("Unparseable sent_date",
					zap.Int("line", line),
					zap.String("value", row[dateCol]))
			}
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}

func hasColumns(row []string, columns map[string]int) bool {
	for _, name := range requiredColumns {
		if columns[name] >= len(row) {
			return false
		}
	}
	return true
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// Package store persists analysis records to an append-only Airtable table.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/mehanizm/airtable"

	"github.com/signaldeskai/signaldesk/internal/analyze"
)

// Column limits mirror the table schema. Airtable counts characters, not
// bytes, so truncation is rune-based; values over the limit are cut, never
// rejected.
const (
	maxSource   = 150
	maxTLDR     = 600
	maxWhatWho  = 300
	maxWhy      = 200
	maxWhere    = 100
	maxWhen     = 80
	maxHow      = 250
	maxTheme    = 100
	maxCategory = 80
	maxConflict = 250
	maxTags     = 300
	maxRawInput = 100_000
)

// Writer maps AnalysisRecords onto the fixed Airtable schema and creates
// one row per signal. Rows are never updated or deleted.
type Writer struct {
	logger *slog.Logger
	table  *airtable.Table
}

// NewWriter creates a Writer bound to one base and table.
func NewWriter(log *slog.Logger, apiKey, baseID, tableName string) *Writer {
	if log == nil {
		log = slog.Default()
	}
	client := airtable.NewClient(apiKey)
	return &Writer{
		logger: log.With(slog.String("component", "airtable_writer")),
		table:  client.GetTable(baseID, tableName),
	}
}

// Store creates one row and returns its record ID. The write is a single
// create call with typecast enabled so Airtable coerces string values into
// its own column types; there is no batching, upsert, or conflict handling.
func (w *Writer) Store(ctx context.Context, record analyze.AnalysisRecord, rawInput, slackLink string) (string, error) {
	rows := &airtable.Records{
		Records: []*airtable.Record{
			{Fields: BuildFields(record, rawInput, slackLink, time.Now())},
		},
		Typecast: true,
	}
	created, err := w.table.AddRecords(rows)
	if err != nil {
		return "", fmt.Errorf("store signal: %w", err)
	}
	if len(created.Records) == 0 {
		return "", fmt.Errorf("store signal: no record returned")
	}
	id := created.Records[0].ID
	w.logger.Info("signal stored", slog.String("record_id", id))
	return id, nil
}

// BuildFields maps the record onto the table's columns, truncating each
// value to its declared limit. date_added falls back to now formatted as
// "Month DD, YYYY" when the model omitted it.
func BuildFields(record analyze.AnalysisRecord, rawInput, slackLink string, now time.Time) map[string]any {
	dateAdded := record.DateAdded
	if dateAdded == "" {
		dateAdded = now.Format("January 2, 2006")
	}
	return map[string]any{
		"Source":     truncate(record.Source, maxSource),
		"TLDR":       truncate(record.TLDR, maxTLDR),
		"What/Who":   truncate(record.WhatWho, maxWhatWho),
		"Why":        truncate(record.Why, maxWhy),
		"Where":      truncate(record.Where, maxWhere),
		"When":       truncate(record.When, maxWhen),
		"How":        truncate(record.How, maxHow),
		"Theme":      truncate(record.Theme, maxTheme),
		"Category":   truncate(record.Category, maxCategory),
		"Conflict":   truncate(record.Conflict, maxConflict),
		"Tags":       truncate(record.Tags, maxTags),
		"Date Added": dateAdded,
		"Raw Input":  truncate(rawInput, maxRawInput),
		"Slack Link": slackLink,
	}
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}

package store

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/signaldeskai/signaldesk/internal/analyze"
)

var buildNow = time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

func TestBuildFieldsMapsAndTruncates(t *testing.T) {
	t.Parallel()

	record := analyze.AnalysisRecord{
		Source:    "nytimes.com",
		TLDR:      strings.Repeat("x", maxTLDR+100),
		WhatWho:   "retailers",
		Theme:     "aesthetic churn / status signaling",
		DateAdded: "March 5, 2026",
	}
	fields := BuildFields(record, "raw input body", "https://ws.example/archives/C1/p123", buildNow)

	if got := fields["TLDR"].(string); utf8.RuneCountInString(got) != maxTLDR {
		t.Fatalf("TLDR length = %d, want %d", utf8.RuneCountInString(got), maxTLDR)
	}
	if got := fields["Source"].(string); got != "nytimes.com" {
		t.Fatalf("Source = %q", got)
	}
	if got := fields["What/Who"].(string); got != "retailers" {
		t.Fatalf("What/Who = %q", got)
	}
	if got := fields["Raw Input"].(string); got != "raw input body" {
		t.Fatalf("Raw Input = %q", got)
	}
	if got := fields["Slack Link"].(string); got != "https://ws.example/archives/C1/p123" {
		t.Fatalf("Slack Link = %q", got)
	}
	if got := fields["Date Added"].(string); got != "March 5, 2026" {
		t.Fatalf("Date Added = %q", got)
	}
}

func TestBuildFieldsEmptyRecordCoercesToEmptyStrings(t *testing.T) {
	t.Parallel()

	fields := BuildFields(analyze.AnalysisRecord{}, "", "", buildNow)
	for _, column := range []string{"Source", "TLDR", "What/Who", "Why", "Where", "When", "How", "Theme", "Category", "Conflict", "Tags", "Raw Input"} {
		value, ok := fields[column]
		if !ok {
			t.Fatalf("missing column %q", column)
		}
		if value.(string) != "" {
			t.Fatalf("column %q = %q, want empty", column, value)
		}
	}
}

func TestBuildFieldsDateFallback(t *testing.T) {
	t.Parallel()

	fields := BuildFields(analyze.AnalysisRecord{}, "", "", buildNow)
	if got := fields["Date Added"].(string); got != "March 5, 2026" {
		t.Fatalf("Date Added fallback = %q, want %q", got, "March 5, 2026")
	}
}

func TestBuildFieldsRawInputCap(t *testing.T) {
	t.Parallel()

	fields := BuildFields(analyze.AnalysisRecord{}, strings.Repeat("r", maxRawInput+1), "", buildNow)
	if got := fields["Raw Input"].(string); utf8.RuneCountInString(got) != maxRawInput {
		t.Fatalf("Raw Input length = %d, want %d", utf8.RuneCountInString(got), maxRawInput)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	t.Parallel()

	// Multi-byte text must be cut by characters, not bytes.
	got := truncate(strings.Repeat("é", 10), 4)
	if got != "éééé" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 100); got != "short" {
		t.Fatalf("truncate should not pad: %q", got)
	}
}

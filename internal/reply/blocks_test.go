package reply

import (
	"testing"

	"github.com/slack-go/slack"

	"github.com/signaldeskai/signaldesk/internal/analyze"
)

func TestFormatAnalysisLayout(t *testing.T) {
	t.Parallel()

	record := analyze.AnalysisRecord{
		TLDR:     "X replacing Y",
		WhatWho:  "downtown retailers",
		Why:      "cost pressure",
		Where:    "NYC",
		When:     "this spring",
		How:      "viral short video",
		Theme:    "aesthetic churn",
		Category: "fashion / retail",
		Conflict: "old vs new",
		Tags:     "thrift, resale",
	}
	blocks := FormatAnalysis(record)

	if len(blocks) != 10 {
		t.Fatalf("expected 10 blocks, got %d", len(blocks))
	}

	header, ok := blocks[0].(*slack.HeaderBlock)
	if !ok {
		t.Fatalf("block 0 is %T, want header", blocks[0])
	}
	if header.Text.Text != HeaderText {
		t.Fatalf("header = %q, want %q", header.Text.Text, HeaderText)
	}

	tldr, ok := blocks[1].(*slack.SectionBlock)
	if !ok {
		t.Fatalf("block 1 is %T, want section", blocks[1])
	}
	if tldr.Text.Text != "*TLDR*\nX replacing Y" {
		t.Fatalf("tldr section = %q", tldr.Text.Text)
	}

	pair, ok := blocks[2].(*slack.SectionBlock)
	if !ok {
		t.Fatalf("block 2 is %T, want section", blocks[2])
	}
	if len(pair.Fields) != 2 {
		t.Fatalf("theme/category fields = %d, want 2", len(pair.Fields))
	}
	if pair.Fields[0].Text != "*Theme*\naesthetic churn" {
		t.Fatalf("theme field = %q", pair.Fields[0].Text)
	}
	if pair.Fields[1].Text != "*Category*\nfashion / retail" {
		t.Fatalf("category field = %q", pair.Fields[1].Text)
	}

	if _, ok := blocks[8].(*slack.ContextBlock); !ok {
		t.Fatalf("block 8 is %T, want context", blocks[8])
	}
	if _, ok := blocks[9].(*slack.DividerBlock); !ok {
		t.Fatalf("block 9 is %T, want divider", blocks[9])
	}
}

func TestFormatAnalysisMissingFieldsRenderEmpty(t *testing.T) {
	t.Parallel()

	blocks := FormatAnalysis(analyze.AnalysisRecord{})
	if len(blocks) != 10 {
		t.Fatalf("expected stable layout, got %d blocks", len(blocks))
	}
	section, ok := blocks[1].(*slack.SectionBlock)
	if !ok {
		t.Fatalf("block 1 is %T, want section", blocks[1])
	}
	if section.Text.Text != "*TLDR*\n" {
		t.Fatalf("empty tldr renders as %q", section.Text.Text)
	}
}

func TestFormatAnalysisIsDeterministic(t *testing.T) {
	t.Parallel()

	record := analyze.AnalysisRecord{TLDR: "same in, same out"}
	first := FormatAnalysis(record)
	second := FormatAnalysis(record)
	if len(first) != len(second) {
		t.Fatalf("layouts differ in length")
	}
	a := first[1].(*slack.SectionBlock)
	b := second[1].(*slack.SectionBlock)
	if a.Text.Text != b.Text.Text {
		t.Fatalf("layouts differ: %q vs %q", a.Text.Text, b.Text.Text)
	}
}

// Package reply renders analysis records into Slack Block Kit layouts.
package reply

import (
	"github.com/slack-go/slack"

	"github.com/signaldeskai/signaldesk/internal/analyze"
)

// HeaderText is the title of every captured-signal reply.
const HeaderText = "Signal Captured"

// FormatAnalysis renders a record into an ordered block layout. It is a
// pure function: missing fields render with an empty value under their
// label rather than being omitted, so the layout is stable across records.
func FormatAnalysis(record analyze.AnalysisRecord) []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, HeaderText, true, false)),
		labeledSection("TLDR", record.TLDR),
		fieldPair("Theme", record.Theme, "Category", record.Category),
		labeledSection("Conflict", record.Conflict),
		labeledSection("Why", record.Why),
		labeledSection("What/Who", record.WhatWho),
		labeledSection("How", record.How),
		fieldPair("Where", record.Where, "When", record.When),
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, "Tags: "+record.Tags, false, false)),
		slack.NewDividerBlock(),
	}
}

func labeledSection(label, value string) *slack.SectionBlock {
	text := slack.NewTextBlockObject(slack.MarkdownType, "*"+label+"*\n"+value, false, false)
	return slack.NewSectionBlock(text, nil, nil)
}

func fieldPair(leftLabel, leftValue, rightLabel, rightValue string) *slack.SectionBlock {
	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*"+leftLabel+"*\n"+leftValue, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*"+rightLabel+"*\n"+rightValue, false, false),
	}
	return slack.NewSectionBlock(nil, fields, nil)
}

// Package pipeline turns the tables of a message store into export-ready
// threads: attachments and senders are joined onto messages, messages are
// normalized and grouped into chats, and chats with the same participants
// are merged into threads.
package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/db"
	"github.com/adamavenir/imsgexport/internal/safecopy"
	"github.com/adamavenir/imsgexport/internal/types"
)

// Options controls one pipeline run.
type Options struct {
	SelfLabel         string
	UnknownLabel      string
	AudioPlaceholder  string
	Unattributed      string
	SortChronological bool
	Filter            *ParticipantFilter

	// AttachmentsDir receives attachment copies. Empty skips placement.
	AttachmentsDir string
	// Copy defaults to safecopy.Copy.
	Copy CopyFunc
}

// OptionsFromConfig maps configuration onto run options.
func OptionsFromConfig(cfg *core.Config) Options {
	return Options{
		SelfLabel:         cfg.SelfLabel,
		UnknownLabel:      cfg.UnknownLabel,
		AudioPlaceholder:  cfg.AudioPlaceholder,
		Unattributed:      cfg.Unattributed,
		SortChronological: cfg.SortChronological,
	}
}

// Stats counts what a run loaded, dropped and produced.
type Stats struct {
	Handles     int
	Messages    int
	Attachments int
	Chats       int

	SkippedJoins      int
	OrphanAttachments int
	Unattributed      int
	Renames           int
	Placeholders      int
	Unassigned        int
	EmptyThreads      int
	FilteredThreads   int

	Threads          int
	ExportedMessages int

	Copied       int
	CopyFailures int
	CopiedBytes  int64
}

// Result is the output of a run.
type Result struct {
	Threads []*types.Thread
	Stats   Stats
}

// Run executes the full pipeline against a row source.
func Run(ctx context.Context, src db.RowSource, opts Options) (*Result, error) {
	tables, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return Process(ctx, tables, opts)
}

// Process runs every stage after loading. The tables are consumed.
func Process(ctx context.Context, t *Tables, opts Options) (*Result, error) {
	stats := Stats{
		Handles:     t.Handles.Len(),
		Messages:    t.Messages.Len(),
		Attachments: t.Attachments.Len(),
		Chats:       t.Chats.Len(),
	}

	ResolveAttachments(t, &stats)
	ResolveSenders(t, opts, &stats)
	NormalizeMessages(t, Normalizer{SelfLabel: opts.SelfLabel, AudioPlaceholder: opts.AudioPlaceholder}, &stats)
	AssignChats(t, &stats)
	AssignParticipants(t, &stats)

	threads := Assemble(t.Chats, opts, &stats)
	stats.Threads = len(threads)
	for _, thread := range threads {
		stats.ExportedMessages += len(thread.Messages)
	}

	if opts.AttachmentsDir != "" {
		place := opts.Copy
		if place == nil {
			place = safecopy.Copy
		}
		if err := PlaceAttachments(ctx, threads, opts.AttachmentsDir, place, &stats); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int("threads", stats.Threads).
		Int("messages", stats.ExportedMessages).
		Int("unattributed", stats.Unattributed).
		Int("renames", stats.Renames).
		Int("skipped_joins", stats.SkippedJoins).
		Strs("participants", opts.Filter.Patterns()).
		Msg("threads assembled")

	return &Result{Threads: threads, Stats: stats}, nil
}

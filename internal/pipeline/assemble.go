package pipeline

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"

	"github.com/adamavenir/imsgexport/internal/db"
	"github.com/adamavenir/imsgexport/internal/types"
)

// ParticipantFilter keeps threads with at least one participant matching
// one of its patterns. A nil or empty filter keeps everything.
type ParticipantFilter struct {
	patterns []string
	globs    []glob.Glob
}

// NewParticipantFilter compiles shell-style patterns such as "+1555*" or
// "*@example.com".
func NewParticipantFilter(patterns []string) (*ParticipantFilter, error) {
	f := &ParticipantFilter{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid participant pattern %q: %w", pattern, err)
		}
		f.patterns = append(f.patterns, pattern)
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Patterns returns the source patterns.
func (f *ParticipantFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}

// Match reports whether a thread passes the filter.
func (f *ParticipantFilter) Match(t *types.Thread) bool {
	if f == nil || len(f.globs) == 0 {
		return true
	}
	for _, p := range t.Participants {
		for _, g := range f.globs {
			if g.Match(p) {
				return true
			}
		}
	}
	return false
}

// Assemble turns resolved chats into the final thread list: chats are lifted
// in ROWID order, merged by participant set, optionally sorted by date,
// filtered, and threads left without messages are dropped.
func Assemble(chats *db.Table[types.Chat], opts Options, stats *Stats) []*types.Thread {
	lifted := make([]*types.Thread, 0, chats.Len())
	chats.Each(func(chat *types.Chat) {
		lifted = append(lifted, ChatThread(chat))
	})

	threads := make([]*types.Thread, 0, len(lifted))
	for _, t := range Deduplicate(lifted) {
		if len(t.Messages) == 0 {
			stats.EmptyThreads++
			continue
		}
		if !opts.Filter.Match(t) {
			stats.FilteredThreads++
			continue
		}
		if opts.SortChronological {
			SortMessages(t)
		}
		threads = append(threads, t)
	}
	return threads
}

// SortMessages orders a thread's messages by date, keeping encounter order
// for equal dates.
func SortMessages(t *types.Thread) {
	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].Date < t.Messages[j].Date
	})
}

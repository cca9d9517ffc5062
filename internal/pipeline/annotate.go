package pipeline

import (
	"github.com/adamavenir/imsgexport/internal/types"
)

// DefaultSeparatorSeconds is the gap after which a date separator is shown.
const DefaultSeparatorSeconds = 300

// Annotate computes rendering hints for cur from its neighbors. next is
// accepted so callers can pass the full window; no current rule needs it.
func Annotate(prev, cur, next *types.Message, separatorSeconds int64) types.Annotation {
	if prev == nil {
		return types.Annotation{ShowSeparator: true}
	}

	gap := cur.Date - prev.Date
	if gap < 0 {
		gap = -gap
	}
	return types.Annotation{
		ShowSeparator: gap > separatorSeconds,
		ShowSender:    cur.Sender != prev.Sender,
		GapSeconds:    gap,
	}
}

// AnnotateThread annotates every message of a thread in order. The thread
// is not modified.
func AnnotateThread(t *types.Thread, separatorSeconds int64) []types.Annotation {
	out := make([]types.Annotation, len(t.Messages))
	for i, msg := range t.Messages {
		var prev, next *types.Message
		if i > 0 {
			prev = t.Messages[i-1]
		}
		if i+1 < len(t.Messages) {
			next = t.Messages[i+1]
		}
		out[i] = Annotate(prev, msg, next, separatorSeconds)
	}
	return out
}

package pipeline

import (
	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/types"
)

// Normalizer applies the per-message cleanup rules.
type Normalizer struct {
	SelfLabel        string
	AudioPlaceholder string
}

// Normalize cleans a message in place and reports whether it is kept.
// Rules run in a fixed order: date conversion, rename drop, placeholder
// substitution, then sender attribution. An absent subject stays nil.
func (n Normalizer) Normalize(msg *types.Message) bool {
	msg.Timestamp = core.TimestampToString(msg.Date)

	if msg.Kind == types.EventRename {
		return false
	}

	if msg.Kind == types.EventUnsupportedMedia {
		placeholder := n.AudioPlaceholder
		msg.Text = &placeholder
	}

	if msg.IsFromMe {
		msg.Sender = n.SelfLabel
	}
	return true
}

// NormalizeMessages runs the normalizer over the message pool, dropping
// messages it rejects.
func NormalizeMessages(t *Tables, n Normalizer, stats *Stats) {
	var dropped []int64
	t.Messages.Each(func(msg *types.Message) {
		if msg.Kind == types.EventUnsupportedMedia {
			stats.Placeholders++
		}
		if !n.Normalize(msg) {
			dropped = append(dropped, msg.RowID)
		}
	})
	for _, id := range dropped {
		t.Messages.Take(id)
	}
	stats.Renames += len(dropped)
}

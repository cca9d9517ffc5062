package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/types"
)

// ResolveAttachments moves each joined attachment out of the pending pool and
// onto its message, in join-row order. Join rows naming a message or an
// attachment that is not present are skipped. Attachments left in the pool
// afterwards are orphans and are discarded.
func ResolveAttachments(t *Tables, stats *Stats) {
	for _, join := range t.MessageAttachments {
		msg, ok := t.Messages.Get(join.Left)
		if !ok {
			stats.SkippedJoins++
			log.Debug().Int64("message", join.Left).Int64("attachment", join.Right).Msg("attachment join: unknown message")
			continue
		}
		att, ok := t.Attachments.Take(join.Right)
		if !ok {
			stats.SkippedJoins++
			log.Debug().Int64("message", join.Left).Int64("attachment", join.Right).Msg("attachment join: unknown or claimed attachment")
			continue
		}
		msg.Attachments = append(msg.Attachments, att)
	}

	stats.OrphanAttachments += t.Attachments.Len()
	if n := t.Attachments.Len(); n > 0 {
		log.Debug().Int("count", n).Msg("discarding orphaned attachments")
	}
}

// lookupHandle resolves a raw sender key to a display identifier.
func lookupHandle(t *Tables, key int64) (string, bool) {
	if key == 0 {
		return "", false
	}
	h, ok := t.Handles.Get(key)
	if !ok {
		return "", false
	}
	return h.Identifier, true
}

// ResolveSenders replaces each message's raw sender key with the handle's
// display identifier. Incoming messages with no resolvable sender are
// unattributed: they are removed from the pool, or kept under the unknown
// label when the policy asks for it. Outgoing messages are attributed by the
// normalizer and never need a handle.
func ResolveSenders(t *Tables, opts Options, stats *Stats) {
	var unattributed []int64
	t.Messages.Each(func(msg *types.Message) {
		if ident, ok := lookupHandle(t, msg.SenderKey); ok {
			msg.Sender = ident
			return
		}
		if msg.IsFromMe {
			return
		}
		stats.Unattributed++
		if opts.Unattributed == core.UnattributedUnknown {
			msg.Sender = opts.UnknownLabel
			return
		}
		unattributed = append(unattributed, msg.RowID)
	})

	for _, id := range unattributed {
		t.Messages.Take(id)
	}
	if len(unattributed) > 0 {
		log.Debug().Int("count", len(unattributed)).Msg("excluding unattributed messages")
	}
}

// AssignChats appends each message to the chat named by its join row and
// removes it from the pool, so a message belongs to one chat at most. Join
// rows naming a chat or a message that is not present are skipped.
func AssignChats(t *Tables, stats *Stats) {
	for _, join := range t.ChatMessages {
		chat, ok := t.Chats.Get(join.Left)
		if !ok {
			stats.SkippedJoins++
			continue
		}
		msg, ok := t.Messages.Take(join.Right)
		if !ok {
			stats.SkippedJoins++
			continue
		}
		chat.Messages = append(chat.Messages, msg)
	}

	stats.Unassigned += t.Messages.Len()
	if n := t.Messages.Len(); n > 0 {
		log.Debug().Int("count", n).Msg("messages without a chat")
	}
}

// AssignParticipants adds each joined handle's identifier to its chat's
// participant set. Unknown chats or handles are skipped.
func AssignParticipants(t *Tables, stats *Stats) {
	for _, join := range t.ChatHandles {
		chat, ok := t.Chats.Get(join.Left)
		if !ok {
			stats.SkippedJoins++
			continue
		}
		ident, ok := lookupHandle(t, join.Right)
		if !ok {
			stats.SkippedJoins++
			continue
		}
		chat.Participants[ident] = struct{}{}
	}
}

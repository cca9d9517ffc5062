package pipeline

import (
	"sort"
	"strings"

	"github.com/adamavenir/imsgexport/internal/types"
)

// keySeparator cannot occur in a phone number or email address.
const keySeparator = "\x00"

// ChatThread lifts a single chat into a thread of one.
func ChatThread(chat *types.Chat) *types.Thread {
	participants := make([]string, 0, len(chat.Participants))
	for p := range chat.Participants {
		participants = append(participants, p)
	}
	sort.Strings(participants)

	return &types.Thread{
		ID:           chat.GUID,
		ChatGUIDs:    []string{chat.GUID},
		Participants: participants,
		Messages:     append([]*types.Message(nil), chat.Messages...),
	}
}

// participantKey is the canonical form of a participant set. The empty set
// maps to "", so threads without participants merge with each other.
func participantKey(t *types.Thread) string {
	sorted := append([]string(nil), t.Participants...)
	sort.Strings(sorted)
	return strings.Join(sorted, keySeparator)
}

// Deduplicate merges threads with identical participant sets. Classes are
// returned in first-encounter order; the first member's ID is kept and
// messages are concatenated in encounter order. The input is not modified.
func Deduplicate(threads []*types.Thread) []*types.Thread {
	byKey := make(map[string]*types.Thread, len(threads))
	merged := make([]*types.Thread, 0, len(threads))

	for _, t := range threads {
		key := participantKey(t)
		if existing, ok := byKey[key]; ok {
			existing.ChatGUIDs = append(existing.ChatGUIDs, t.ChatGUIDs...)
			existing.Messages = append(existing.Messages, t.Messages...)
			continue
		}
		clone := &types.Thread{
			ID:           t.ID,
			ChatGUIDs:    append([]string(nil), t.ChatGUIDs...),
			Participants: append([]string(nil), t.Participants...),
			Messages:     append([]*types.Message(nil), t.Messages...),
		}
		sort.Strings(clone.Participants)
		byKey[key] = clone
		merged = append(merged, clone)
	}
	return merged
}

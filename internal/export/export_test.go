package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/types"
)

func strPtr(s string) *string { return &s }

func sampleThread() *types.Thread {
	mime := "image/jpeg"
	return &types.Thread{
		ID:           "iMessage;-;+15551234567",
		ChatGUIDs:    []string{"iMessage;-;+15551234567", "SMS;-;+15551234567"},
		Participants: []string{"+15551234567"},
		Messages: []*types.Message{
			{
				GUID:      "m-1",
				Text:      strPtr("hi"),
				Sender:    "+15551234567",
				Date:      0,
				Timestamp: "2001-01-01 00:00:00",
				Service:   strPtr("iMessage"),
				Country:   strPtr("us"),
			},
			{
				GUID:      "m-2",
				Sender:    "me",
				Date:      60,
				Timestamp: "2001-01-01 00:01:00",
				IsFromMe:  true,
				Subject:   strPtr("photos"),
				Attachments: []*types.Attachment{
					{GUID: "a-1", Filename: "/src/photo.jpg", MimeType: &mime, TransferName: strPtr("IMG_0001.jpg"), LocalName: "photo-1.jpg"},
					{GUID: "a-2", Filename: "/src/gone.mov", CopyErr: os.ErrNotExist},
				},
			},
			{
				GUID:      "m-3",
				Text:      strPtr("later"),
				Sender:    "+15551234567",
				Date:      3600,
				Timestamp: "2001-01-01 01:00:00",
			},
		},
	}
}

func newLayout(t *testing.T) Layout {
	return NewLayout(t.TempDir(), core.DefaultConfig())
}

func TestWriteThreadsDocument(t *testing.T) {
	layout := newLayout(t)
	w := NewWriter(layout, "/data/chat.db")
	w.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	index, err := w.WriteThreads([]*types.Thread{sampleThread()})
	require.NoError(t, err)
	require.Len(t, index.Threads, 1)
	require.Equal(t, "thread_imessage-15551234567.json", index.Threads[0].File)
	require.Equal(t, 3, index.Threads[0].MessageCount)
	require.Equal(t, "2024-05-01T12:00:00Z", index.ExportedAt)
	require.NotEmpty(t, index.ExportID)

	data, err := os.ReadFile(filepath.Join(layout.Threads(), index.Threads[0].File))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "iMessage;-;+15551234567", raw["identifier"])
	require.Equal(t, []any{"iMessage;-;+15551234567", "SMS;-;+15551234567"}, raw["chats"])

	messages := raw["messages"].([]any)
	first := messages[0].(map[string]any)
	_, hasSubject := first["subject"]
	require.False(t, hasSubject, "absent subject must not produce a key")
	require.Equal(t, "iMessage", first["service"])
	require.Equal(t, "us", first["country"])
	require.Equal(t, "2001-01-01 00:00:00", first["date"])

	second := messages[1].(map[string]any)
	require.Nil(t, second["text"])
	_, hasText := second["text"]
	require.True(t, hasText, "absent text is written as null")
	require.Equal(t, "photos", second["subject"])
	_, hasCountry := second["country"]
	require.False(t, hasCountry, "absent country must not produce a key")

	atts := second["attachments"].([]any)
	copied := atts[0].(map[string]any)
	require.Equal(t, "photo-1.jpg", copied["filename"])
	require.Equal(t, true, copied["copied"])
	require.Equal(t, "image/jpeg", copied["mime_type"])
	require.Equal(t, "IMG_0001.jpg", copied["transfer_name"])
	failed := atts[1].(map[string]any)
	_, hasTransferName := failed["transfer_name"]
	require.False(t, hasTransferName)
	require.Equal(t, "/src/gone.mov", failed["filename"])
	require.Equal(t, false, failed["copied"])
	require.NotEmpty(t, failed["error"])

	_, hasAttachments := messages[2].(map[string]any)["attachments"]
	require.False(t, hasAttachments)

	read, err := ReadIndex(layout)
	require.NoError(t, err)
	require.Equal(t, index.ExportID, read.ExportID)
	require.Equal(t, "/data/chat.db", read.Source)
}

func TestThreadFilenameCollisions(t *testing.T) {
	w := NewWriter(newLayout(t), "")

	require.Equal(t, "thread_chat-1.json", w.ThreadFilename("chat;1"))
	require.Equal(t, "thread_chat-2.json", w.ThreadFilename("chat,1"))
	require.Equal(t, "thread_chat-3.json", w.ThreadFilename("chat.1"))
	require.Equal(t, "thread_chat-1.json", w.ThreadFilename("chat;1"))
	require.Equal(t, "thread_untitled.json", w.ThreadFilename("???"))
}

func TestDetect(t *testing.T) {
	root := t.TempDir()

	layout := NewLayout(root, core.DefaultConfig())
	found, err := layout.Detect()
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, os.Mkdir(filepath.Join(root, "attachments"), 0o755))
	found, err = layout.Detect()
	require.NoError(t, err)
	require.True(t, found)

	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "threads"), []byte("x"), 0o644))
	_, err = NewLayout(other, core.DefaultConfig()).Detect()
	require.Error(t, err)
}

func TestConversationTitle(t *testing.T) {
	require.Equal(t, "Conversation with A", ConversationTitle([]string{"A"}))
	require.Equal(t, "Conversation with A and B", ConversationTitle([]string{"A", "B"}))
	require.Equal(t, "Conversation with A, B and C", ConversationTitle([]string{"A", "B", "C"}))
}

func TestRenderHTML(t *testing.T) {
	thread := sampleThread()
	thread.Messages[0].Text = strPtr("<b>hi</b>")

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, thread, 300, "../attachments"))
	out := buf.String()

	require.Contains(t, out, "<title>Conversation with +15551234567</title>")
	require.Contains(t, out, "&lt;b&gt;hi&lt;/b&gt;")
	require.Contains(t, out, `<img src="../attachments/photo-1.jpg"`)
	require.Contains(t, out, `<span class="missing">gone.mov</span>`)
	require.Contains(t, out, `<span class="msg_day">Mon 1 Jan 2001</span> <span class="msg_time">00:00</span>`)
	require.Contains(t, out, `<span class="msg_day">Mon 1 Jan 2001</span> <span class="msg_time">01:00</span>`)
	require.NotContains(t, out, `<span class="msg_time">00:01</span>`)
	require.Zero(t, strings.Count(out, `class="handle_str"`), "one counterpart never gets a banner")
}

func TestRenderHTMLBannersFollowCounterparts(t *testing.T) {
	msg := func(guid, sender string) *types.Message {
		return &types.Message{GUID: guid, Sender: sender, IsFromMe: sender == "me", Text: strPtr(guid)}
	}
	thread := &types.Thread{
		ID:           "chat-group",
		Participants: []string{"+1", "+2"},
		Messages: []*types.Message{
			msg("m-1", "+1"),
			msg("m-2", "me"),
			msg("m-3", "+2"),
			msg("m-4", "me"),
			msg("m-5", "+2"),
			msg("m-6", "+1"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, thread, 300, "../attachments"))
	out := buf.String()

	require.Equal(t, 2, strings.Count(out, `class="handle_str"`))
	require.Equal(t, 1, strings.Count(out, `<span class="handle">+2</span>`))
	require.Equal(t, 1, strings.Count(out, `<span class="handle">+1</span>`))
	require.NotContains(t, out, `<span class="handle">me</span>`)
}

func TestWriteHTML(t *testing.T) {
	layout := newLayout(t)
	threads := []*types.Thread{sampleThread()}
	index, err := NewWriter(layout, "").WriteThreads(threads)
	require.NoError(t, err)

	require.NoError(t, WriteHTML(layout, threads, index, 300))
	_, err = os.Stat(filepath.Join(layout.HTML(), "thread_imessage-15551234567.html"))
	require.NoError(t, err)

	require.Error(t, WriteHTML(layout, threads, &Index{}, 300))
}

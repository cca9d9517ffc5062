package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/pipeline"
	"github.com/adamavenir/imsgexport/internal/types"
)

//go:embed templates/thread.html.tmpl
var templates embed.FS

var threadTemplate = template.Must(template.ParseFS(templates, "templates/thread.html.tmpl"))

const (
	separatorDayLayout  = "Mon 2 Jan 2006"
	separatorTimeLayout = "15:04"
)

type htmlPage struct {
	Title    string
	Messages []htmlMessage
}

type htmlSeparator struct {
	Day  string
	Time string
}

type htmlMessage struct {
	Separator   *htmlSeparator
	Sender      string
	FromMe      bool
	Timestamp   string
	Subject     string
	Text        string
	Attachments []htmlAttachment
}

type htmlAttachment struct {
	Name  string
	Href  string
	Image bool
}

// ConversationTitle joins participants as "Conversation with A, B and C".
func ConversationTitle(participants []string) string {
	switch len(participants) {
	case 0:
		return "Conversation"
	case 1:
		return "Conversation with " + participants[0]
	default:
		last := len(participants) - 1
		return "Conversation with " + strings.Join(participants[:last], ", ") + " and " + participants[last]
	}
}

// RenderHTML writes one thread as a standalone page. attachmentsHref is the
// path from the page to the attachments directory.
func RenderHTML(w io.Writer, t *types.Thread, separatorSeconds int64, attachmentsHref string) error {
	notes := pipeline.AnnotateThread(t, separatorSeconds)
	page := htmlPage{
		Title:    ConversationTitle(t.Participants),
		Messages: make([]htmlMessage, 0, len(t.Messages)),
	}
	// The banner marks a switch between counterparts; outgoing messages
	// neither show it nor reset it.
	var counterpart string
	for i, msg := range t.Messages {
		m := htmlMessage{
			FromMe:    msg.IsFromMe,
			Timestamp: msg.Timestamp,
		}
		if notes[i].ShowSeparator {
			when := core.DateTime(msg.Date)
			m.Separator = &htmlSeparator{
				Day:  when.Format(separatorDayLayout),
				Time: when.Format(separatorTimeLayout),
			}
		}
		if !msg.IsFromMe {
			if notes[i].ShowSender && counterpart != "" && msg.Sender != counterpart {
				m.Sender = msg.Sender
			}
			counterpart = msg.Sender
		}
		if msg.Subject != nil {
			m.Subject = *msg.Subject
		}
		if msg.Text != nil {
			m.Text = *msg.Text
		}
		for _, att := range msg.Attachments {
			a := htmlAttachment{Name: filepath.Base(att.ExportName())}
			if att.LocalName != "" {
				a.Href = path.Join(attachmentsHref, att.LocalName)
			}
			a.Image = att.MimeType != nil && strings.HasPrefix(*att.MimeType, "image/")
			m.Attachments = append(m.Attachments, a)
		}
		page.Messages = append(page.Messages, m)
	}
	return threadTemplate.Execute(w, page)
}

// WriteHTML renders every indexed thread into the layout's HTML directory,
// naming each page after its JSON document.
func WriteHTML(layout Layout, threads []*types.Thread, index *Index, separatorSeconds int64) error {
	dir := layout.HTML()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create html dir: %w", err)
	}
	rel, err := filepath.Rel(dir, layout.Attachments())
	if err != nil {
		return err
	}
	href := filepath.ToSlash(rel)

	files := make(map[string]string, len(index.Threads))
	for _, entry := range index.Threads {
		files[entry.Identifier] = entry.File
	}
	for _, t := range threads {
		name, ok := files[t.ID]
		if !ok {
			return fmt.Errorf("thread %s missing from index", t.ID)
		}
		var buf bytes.Buffer
		if err := RenderHTML(&buf, t, separatorSeconds, href); err != nil {
			return fmt.Errorf("render thread %s: %w", t.ID, err)
		}
		if err := os.WriteFile(filepath.Join(dir, htmlName(name)), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write thread %s: %w", t.ID, err)
		}
	}
	return nil
}

package export

import (
	"github.com/adamavenir/imsgexport/internal/types"
)

// ThreadDocument is the on-disk form of a thread.
type ThreadDocument struct {
	Identifier   string          `json:"identifier"`
	Participants []string        `json:"participants"`
	Chats        []string        `json:"chats"`
	Messages     []MessageRecord `json:"messages"`
}

// MessageRecord is the on-disk form of a message. Text is null when the
// store had none; subject, service and country are omitted when absent.
type MessageRecord struct {
	GUID        string             `json:"guid"`
	Text        *string            `json:"text"`
	Sender      string             `json:"sender"`
	Date        string             `json:"date"`
	IsFromMe    bool               `json:"is_from_me"`
	Service     *string            `json:"service,omitempty"`
	Country     *string            `json:"country,omitempty"`
	Subject     *string            `json:"subject,omitempty"`
	Attachments []AttachmentRecord `json:"attachments,omitempty"`
}

// AttachmentRecord is the on-disk form of an attachment. Filename is the
// local name when the file was copied and the original path otherwise.
type AttachmentRecord struct {
	GUID         string  `json:"guid"`
	Filename     string  `json:"filename"`
	MimeType     *string `json:"mime_type,omitempty"`
	TransferName *string `json:"transfer_name,omitempty"`
	Copied       bool    `json:"copied"`
	Error        string  `json:"error,omitempty"`
}

// NewThreadDocument converts an assembled thread.
func NewThreadDocument(t *types.Thread) ThreadDocument {
	doc := ThreadDocument{
		Identifier:   t.ID,
		Participants: nonNil(t.Participants),
		Chats:        nonNil(t.ChatGUIDs),
		Messages:     make([]MessageRecord, 0, len(t.Messages)),
	}
	for _, msg := range t.Messages {
		doc.Messages = append(doc.Messages, newMessageRecord(msg))
	}
	return doc
}

func newMessageRecord(msg *types.Message) MessageRecord {
	rec := MessageRecord{
		GUID:     msg.GUID,
		Text:     msg.Text,
		Sender:   msg.Sender,
		Date:     msg.Timestamp,
		IsFromMe: msg.IsFromMe,
		Service:  msg.Service,
		Country:  msg.Country,
		Subject:  msg.Subject,
	}
	for _, att := range msg.Attachments {
		a := AttachmentRecord{
			GUID:         att.GUID,
			Filename:     att.ExportName(),
			MimeType:     att.MimeType,
			TransferName: att.TransferName,
			Copied:       att.LocalName != "",
		}
		if att.CopyErr != nil {
			a.Error = att.CopyErr.Error()
		}
		rec.Attachments = append(rec.Attachments, a)
	}
	return rec
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

package types

// EventKind classifies a message as content or as a structural event.
type EventKind int

const (
	EventNone EventKind = iota
	// EventRename marks a thread-metadata change (group renamed).
	EventRename
	// EventUnsupportedMedia marks content that cannot be materialized (audio).
	EventUnsupportedMedia
)

// String returns the lowercase name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventRename:
		return "rename"
	case EventUnsupportedMedia:
		return "unsupported_media"
	default:
		return "none"
	}
}

// Handle represents a sender identity (phone number or email).
type Handle struct {
	RowID      int64
	Identifier string
}

// Attachment represents a media reference owned by a single message.
type Attachment struct {
	RowID        int64
	GUID         string
	Filename     string
	MimeType     *string
	TransferName *string

	// LocalName is set once the file has been placed in the export tree.
	LocalName string
	// CopyErr is set when placement failed; Filename is exported instead.
	CopyErr error
}

// ExportName returns the filename recorded in the export.
func (a *Attachment) ExportName() string {
	if a.LocalName != "" {
		return a.LocalName
	}
	return a.Filename
}

// Message represents a single unit of conversation content.
type Message struct {
	RowID     int64
	GUID      string
	Text      *string
	SenderKey int64
	Sender    string
	Subject   *string
	Service   *string
	Country   *string
	Date      int64 // seconds since 2001-01-01 UTC
	Timestamp string
	IsFromMe  bool
	Kind      EventKind

	Attachments []*Attachment
}

// Chat is a raw per-backend conversation record.
type Chat struct {
	RowID        int64
	GUID         string
	Participants map[string]struct{}
	Messages     []*Message
}

// Thread is a deduplicated conversation spanning one or more chats.
type Thread struct {
	ID           string
	ChatGUIDs    []string
	Participants []string
	Messages     []*Message
}

// Annotation carries per-message rendering hints computed from neighbors.
type Annotation struct {
	ShowSeparator bool
	ShowSender    bool
	GapSeconds    int64
}

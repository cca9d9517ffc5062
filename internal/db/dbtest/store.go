// Package dbtest builds small message-store databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// SchemaSQL mirrors the column positions of a real sms.db/chat.db closely
// enough for the exporter: message.text is column 2, handle_id 5, subject 6,
// country 7, service 11, date 15 and is_from_me 21.
const SchemaSQL = `
CREATE TABLE handle (
  ROWID INTEGER PRIMARY KEY AUTOINCREMENT UNIQUE,
  id TEXT NOT NULL,
  country TEXT,
  service TEXT NOT NULL DEFAULT 'iMessage',
  uncanonicalized_id TEXT
);

CREATE TABLE message (
  ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
  guid TEXT UNIQUE NOT NULL,
  text TEXT,
  replace INTEGER DEFAULT 0,
  service_center TEXT,
  handle_id INTEGER DEFAULT 0,
  subject TEXT,
  country TEXT,
  attributedBody BLOB,
  version INTEGER DEFAULT 0,
  type INTEGER DEFAULT 0,
  service TEXT,
  account TEXT,
  account_guid TEXT,
  error INTEGER DEFAULT 0,
  date INTEGER,
  date_read INTEGER,
  date_delivered INTEGER,
  is_delivered INTEGER DEFAULT 0,
  is_finished INTEGER DEFAULT 0,
  is_emote INTEGER DEFAULT 0,
  is_from_me INTEGER DEFAULT 0,
  is_empty INTEGER DEFAULT 0,
  item_type INTEGER DEFAULT 0,
  group_title TEXT,
  is_audio_message INTEGER DEFAULT 0
);

CREATE TABLE attachment (
  ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
  guid TEXT UNIQUE NOT NULL,
  created_date INTEGER DEFAULT 0,
  start_date INTEGER DEFAULT 0,
  filename TEXT,
  uti TEXT,
  mime_type TEXT,
  transfer_state INTEGER DEFAULT 0,
  is_outgoing INTEGER DEFAULT 0,
  user_info BLOB,
  transfer_name TEXT,
  total_bytes INTEGER DEFAULT 0
);

CREATE TABLE chat (
  ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
  guid TEXT UNIQUE NOT NULL,
  style INTEGER,
  state INTEGER,
  account_id TEXT,
  properties BLOB,
  chat_identifier TEXT,
  service_name TEXT,
  room_name TEXT,
  display_name TEXT
);

CREATE TABLE message_attachment_join (
  message_id INTEGER REFERENCES message (ROWID) ON DELETE CASCADE,
  attachment_id INTEGER REFERENCES attachment (ROWID) ON DELETE CASCADE,
  UNIQUE(message_id, attachment_id)
);

CREATE TABLE chat_handle_join (
  chat_id INTEGER REFERENCES chat (ROWID) ON DELETE CASCADE,
  handle_id INTEGER REFERENCES handle (ROWID) ON DELETE CASCADE,
  UNIQUE(chat_id, handle_id)
);

CREATE TABLE chat_message_join (
  chat_id INTEGER REFERENCES chat (ROWID) ON DELETE CASCADE,
  message_id INTEGER REFERENCES message (ROWID) ON DELETE CASCADE,
  PRIMARY KEY (chat_id, message_id)
);
`

// Store is a writable fixture database on disk.
type Store struct {
	t    testing.TB
	Path string
	DB   *sql.DB
}

// Message describes a message row. Zero values map to the column defaults.
type Message struct {
	ID         int64
	GUID       string
	Text       *string
	HandleID   int64
	Subject    *string
	Service    string
	Date       int64
	IsFromMe   bool
	ItemType   int64
	IsAudio    bool
	GroupTitle *string
}

// New creates a fixture store with the default schema.
func New(t testing.TB) *Store {
	return NewWithSchema(t, SchemaSQL)
}

// NewWithSchema creates a fixture store with a custom schema.
func NewWithSchema(t testing.TB, schema string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	if _, err := conn.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return &Store{t: t, Path: path, DB: conn}
}

func (s *Store) exec(query string, args ...any) {
	s.t.Helper()
	if _, err := s.DB.Exec(query, args...); err != nil {
		s.t.Fatalf("exec %q: %v", query, err)
	}
}

// Handle inserts a handle row.
func (s *Store) Handle(id int64, ident string) {
	s.t.Helper()
	s.exec(`INSERT INTO handle (ROWID, id) VALUES (?, ?)`, id, ident)
}

// Message inserts a message row.
func (s *Store) Message(m Message) {
	s.t.Helper()
	service := m.Service
	if service == "" {
		service = "iMessage"
	}
	s.exec(`
		INSERT INTO message (ROWID, guid, text, handle_id, subject, service, date, is_from_me, item_type, group_title, is_audio_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.GUID, m.Text, m.HandleID, m.Subject, service, m.Date, boolInt(m.IsFromMe), m.ItemType, m.GroupTitle, boolInt(m.IsAudio))
}

// Attachment inserts an attachment row.
func (s *Store) Attachment(id int64, guid, filename string, mimeType *string) {
	s.t.Helper()
	s.exec(`INSERT INTO attachment (ROWID, guid, filename, mime_type, transfer_name) VALUES (?, ?, ?, ?, ?)`,
		id, guid, filename, mimeType, filepath.Base(filename))
}

// Chat inserts a chat row.
func (s *Store) Chat(id int64, guid, identifier, service string) {
	s.t.Helper()
	s.exec(`INSERT INTO chat (ROWID, guid, style, chat_identifier, service_name) VALUES (?, ?, 45, ?, ?)`,
		id, guid, identifier, service)
}

// AttachToMessage inserts a message_attachment_join row.
func (s *Store) AttachToMessage(messageID, attachmentID int64) {
	s.t.Helper()
	s.exec(`INSERT INTO message_attachment_join (message_id, attachment_id) VALUES (?, ?)`, messageID, attachmentID)
}

// AddParticipant inserts a chat_handle_join row.
func (s *Store) AddParticipant(chatID, handleID int64) {
	s.t.Helper()
	s.exec(`INSERT INTO chat_handle_join (chat_id, handle_id) VALUES (?, ?)`, chatID, handleID)
}

// AddToChat inserts a chat_message_join row.
func (s *Store) AddToChat(chatID, messageID int64) {
	s.t.Helper()
	s.exec(`INSERT INTO chat_message_join (chat_id, message_id) VALUES (?, ?)`, chatID, messageID)
}

// Str returns a pointer to value.
func Str(value string) *string {
	return &value
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

package db

import (
	"errors"
	"fmt"
	"strings"
)

// Logical table names in the message store.
const (
	TableHandle                = "handle"
	TableMessage               = "message"
	TableAttachment            = "attachment"
	TableChat                  = "chat"
	TableMessageAttachmentJoin = "message_attachment_join"
	TableChatHandleJoin        = "chat_handle_join"
	TableChatMessageJoin       = "chat_message_join"
)

// ColRowID is the row identifier column shared by every entity table.
const ColRowID = "ROWID"

// Required column layout per table. Loaders refuse tables missing any of these.
var tableLayouts = map[string][]string{
	TableHandle:                {ColRowID, "id"},
	TableMessage:               {ColRowID, "guid", "text", "handle_id", "subject", "country", "service", "date", "is_from_me", "item_type", "is_audio_message"},
	TableAttachment:            {ColRowID, "guid", "filename", "mime_type"},
	TableChat:                  {ColRowID, "guid"},
	TableMessageAttachmentJoin: {"message_id", "attachment_id"},
	TableChatHandleJoin:        {"chat_id", "handle_id"},
	TableChatMessageJoin:       {"chat_id", "message_id"},
}

// ErrSchema matches every error caused by a store that does not follow the
// documented layout.
var ErrSchema = errors.New("schema mismatch")

// MissingColumnError reports a table lacking a required column.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %s: missing column %q", e.Table, e.Column)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrSchema
}

// MissingTableError reports a table absent from the store.
type MissingTableError struct {
	Table string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("missing table %q", e.Table)
}

func (e *MissingTableError) Is(target error) bool {
	return target == ErrSchema
}

// ColumnTypeError reports a value that cannot be read as the expected type.
type ColumnTypeError struct {
	Table  string
	Column string
	Want   string
	Value  any
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("table %s: column %q: expected %s, got %T", e.Table, e.Column, e.Want, e.Value)
}

func (e *ColumnTypeError) Is(target error) bool {
	return target == ErrSchema
}

// Layout returns the required columns for a table.
func Layout(table string) ([]string, bool) {
	cols, ok := tableLayouts[table]
	if !ok {
		return nil, false
	}
	return append([]string(nil), cols...), true
}

// LayoutDescription renders the full required layout, one table per line.
func LayoutDescription() string {
	order := []string{
		TableHandle, TableMessage, TableAttachment, TableChat,
		TableMessageAttachmentJoin, TableChatHandleJoin, TableChatMessageJoin,
	}
	var b strings.Builder
	for _, table := range order {
		fmt.Fprintf(&b, "  %s(%s)\n", table, strings.Join(tableLayouts[table], ", "))
	}
	return b.String()
}

func isKnownTable(table string) bool {
	_, ok := tableLayouts[table]
	return ok
}

func checkColumns(table string, columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[strings.ToLower(col)] = true
	}
	for _, col := range tableLayouts[table] {
		if !present[strings.ToLower(col)] {
			return &MissingColumnError{Table: table, Column: col}
		}
	}
	return nil
}

package db

import (
	"context"
	"fmt"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/types"
)

// Store values for message.item_type.
const itemTypeRename = 2

// Table holds the typed records of one logical table keyed by row id.
// Order keeps the row ids in source order.
type Table[T any] struct {
	Rows  map[int64]*T
	Order []int64
}

func newTable[T any]() *Table[T] {
	return &Table[T]{Rows: map[int64]*T{}}
}

func (t *Table[T]) add(table string, id int64, rec *T) error {
	if _, dup := t.Rows[id]; dup {
		return fmt.Errorf("%w: table %s: duplicate ROWID %d", ErrSchema, table, id)
	}
	t.Rows[id] = rec
	t.Order = append(t.Order, id)
	return nil
}

// Get looks up a record.
func (t *Table[T]) Get(id int64) (*T, bool) {
	rec, ok := t.Rows[id]
	return rec, ok
}

// Take removes and returns a record.
func (t *Table[T]) Take(id int64) (*T, bool) {
	rec, ok := t.Rows[id]
	if ok {
		delete(t.Rows, id)
	}
	return rec, ok
}

// Len returns the number of records still present.
func (t *Table[T]) Len() int {
	return len(t.Rows)
}

// Each visits the records still present in source order.
func (t *Table[T]) Each(fn func(*T)) {
	for _, id := range t.Order {
		if rec, ok := t.Rows[id]; ok {
			fn(rec)
		}
	}
}

func scanTable(ctx context.Context, src RowSource, table string, fn func(Row) error) error {
	columns, err := src.Columns(ctx, table)
	if err != nil {
		return err
	}
	if err := checkColumns(table, columns); err != nil {
		return err
	}
	return src.Scan(ctx, table, fn)
}

// LoadHandles loads the handle table.
func LoadHandles(ctx context.Context, src RowSource) (*Table[types.Handle], error) {
	handles := newTable[types.Handle]()
	err := scanTable(ctx, src, TableHandle, func(row Row) error {
		id, err := row.Int64(ColRowID)
		if err != nil {
			return err
		}
		ident, err := row.String("id")
		if err != nil {
			return err
		}
		return handles.add(TableHandle, id, &types.Handle{RowID: id, Identifier: ident})
	})
	if err != nil {
		return nil, fmt.Errorf("load handles: %w", err)
	}
	return handles, nil
}

// LoadMessages loads the message table.
func LoadMessages(ctx context.Context, src RowSource) (*Table[types.Message], error) {
	messages := newTable[types.Message]()
	err := scanTable(ctx, src, TableMessage, func(row Row) error {
		msg, err := scanMessage(row)
		if err != nil {
			return err
		}
		return messages.add(TableMessage, msg.RowID, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	return messages, nil
}

func scanMessage(row Row) (*types.Message, error) {
	var (
		msg types.Message
		err error
	)
	if msg.RowID, err = row.Int64(ColRowID); err != nil {
		return nil, err
	}
	if msg.GUID, err = row.String("guid"); err != nil {
		return nil, err
	}
	if msg.Text, err = row.NullString("text"); err != nil {
		return nil, err
	}
	if msg.SenderKey, err = row.Int64("handle_id"); err != nil {
		return nil, err
	}
	if msg.Subject, err = row.NullString("subject"); err != nil {
		return nil, err
	}
	if msg.Country, err = row.NullString("country"); err != nil {
		return nil, err
	}
	if msg.Service, err = row.NullString("service"); err != nil {
		return nil, err
	}
	raw, err := row.Int64("date")
	if err != nil {
		return nil, err
	}
	msg.Date = core.NormalizeDate(raw)
	if msg.IsFromMe, err = row.Bool("is_from_me"); err != nil {
		return nil, err
	}
	itemType, err := row.Int64("item_type")
	if err != nil {
		return nil, err
	}
	audio, err := row.Bool("is_audio_message")
	if err != nil {
		return nil, err
	}
	msg.Kind = eventKind(itemType, audio)
	msg.Attachments = []*types.Attachment{}
	return &msg, nil
}

func eventKind(itemType int64, audio bool) types.EventKind {
	switch {
	case itemType == itemTypeRename:
		return types.EventRename
	case audio:
		return types.EventUnsupportedMedia
	default:
		return types.EventNone
	}
}

// LoadAttachments loads the attachment table.
func LoadAttachments(ctx context.Context, src RowSource) (*Table[types.Attachment], error) {
	attachments := newTable[types.Attachment]()
	err := scanTable(ctx, src, TableAttachment, func(row Row) error {
		var (
			att types.Attachment
			err error
		)
		if att.RowID, err = row.Int64(ColRowID); err != nil {
			return err
		}
		if att.GUID, err = row.String("guid"); err != nil {
			return err
		}
		if att.Filename, err = row.String("filename"); err != nil {
			return err
		}
		if att.MimeType, err = row.NullString("mime_type"); err != nil {
			return err
		}
		if att.TransferName, err = row.OptionalString("transfer_name"); err != nil {
			return err
		}
		return attachments.add(TableAttachment, att.RowID, &att)
	})
	if err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}
	return attachments, nil
}

// LoadChats loads the chat table. Participants and messages start empty.
func LoadChats(ctx context.Context, src RowSource) (*Table[types.Chat], error) {
	chats := newTable[types.Chat]()
	err := scanTable(ctx, src, TableChat, func(row Row) error {
		var (
			chat types.Chat
			err  error
		)
		if chat.RowID, err = row.Int64(ColRowID); err != nil {
			return err
		}
		if chat.GUID, err = row.String("guid"); err != nil {
			return err
		}
		chat.Participants = map[string]struct{}{}
		chat.Messages = []*types.Message{}
		return chats.add(TableChat, chat.RowID, &chat)
	})
	if err != nil {
		return nil, fmt.Errorf("load chats: %w", err)
	}
	return chats, nil
}

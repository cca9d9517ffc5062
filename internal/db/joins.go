package db

import (
	"context"
	"fmt"
)

// JoinRow is one (left id, right id) pair from a join table, named in the
// order the table is named (chat_message_join: Left=chat, Right=message).
type JoinRow struct {
	Left  int64
	Right int64
}

func loadJoin(ctx context.Context, src RowSource, table string) ([]JoinRow, error) {
	cols := tableLayouts[table]
	leftCol, rightCol := cols[0], cols[1]

	var joins []JoinRow
	err := scanTable(ctx, src, table, func(row Row) error {
		left, err := row.Int64(leftCol)
		if err != nil {
			return err
		}
		right, err := row.Int64(rightCol)
		if err != nil {
			return err
		}
		joins = append(joins, JoinRow{Left: left, Right: right})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	return joins, nil
}

// LoadMessageAttachmentJoin loads (message id, attachment id) rows.
func LoadMessageAttachmentJoin(ctx context.Context, src RowSource) ([]JoinRow, error) {
	return loadJoin(ctx, src, TableMessageAttachmentJoin)
}

// LoadChatHandleJoin loads (chat id, handle id) rows.
func LoadChatHandleJoin(ctx context.Context, src RowSource) ([]JoinRow, error) {
	return loadJoin(ctx, src, TableChatHandleJoin)
}

// LoadChatMessageJoin loads (chat id, message id) rows.
func LoadChatMessageJoin(ctx context.Context, src RowSource) ([]JoinRow, error) {
	return loadJoin(ctx, src, TableChatMessageJoin)
}

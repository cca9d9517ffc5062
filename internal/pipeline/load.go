package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/adamavenir/imsgexport/internal/db"
	"github.com/adamavenir/imsgexport/internal/types"
)

// Tables holds everything read from a store for one run. Each field is owned
// by the run; the join stage consumes the pools in place.
type Tables struct {
	Handles     *db.Table[types.Handle]
	Messages    *db.Table[types.Message]
	Attachments *db.Table[types.Attachment]
	Chats       *db.Table[types.Chat]

	MessageAttachments []db.JoinRow
	ChatHandles        []db.JoinRow
	ChatMessages       []db.JoinRow
}

// Load reads every table. The loads are independent and run concurrently;
// the first failure cancels the rest.
func Load(ctx context.Context, src db.RowSource) (*Tables, error) {
	var t Tables
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		t.Handles, err = db.LoadHandles(gctx, src)
		return err
	})
	g.Go(func() (err error) {
		t.Messages, err = db.LoadMessages(gctx, src)
		return err
	})
	g.Go(func() (err error) {
		t.Attachments, err = db.LoadAttachments(gctx, src)
		return err
	})
	g.Go(func() (err error) {
		t.Chats, err = db.LoadChats(gctx, src)
		return err
	})
	g.Go(func() (err error) {
		t.MessageAttachments, err = db.LoadMessageAttachmentJoin(gctx, src)
		return err
	})
	g.Go(func() (err error) {
		t.ChatHandles, err = db.LoadChatHandleJoin(gctx, src)
		return err
	})
	g.Go(func() (err error) {
		t.ChatMessages, err = db.LoadChatMessageJoin(gctx, src)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().
		Int("handles", t.Handles.Len()).
		Int("messages", t.Messages.Len()).
		Int("attachments", t.Attachments.Len()).
		Int("chats", t.Chats.Len()).
		Msg("tables loaded")
	return &t, nil
}

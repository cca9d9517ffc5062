package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/db"
	"github.com/adamavenir/imsgexport/internal/types"
)

type fixture struct {
	t   *testing.T
	src *db.MemorySource
}

type msgRow struct {
	id       int64
	handle   int64
	text     any
	noText   bool
	subject  any
	date     int64
	fromMe   bool
	itemType int64
	audio    bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	src := db.NewMemorySource()
	for _, table := range []string{
		db.TableHandle, db.TableMessage, db.TableAttachment, db.TableChat,
		db.TableMessageAttachmentJoin, db.TableChatHandleJoin, db.TableChatMessageJoin,
	} {
		cols, _ := db.Layout(table)
		src.AddTable(table, cols...)
	}
	return &fixture{t: t, src: src}
}

func (f *fixture) insert(table string, values ...any) {
	f.t.Helper()
	if err := f.src.Insert(table, values...); err != nil {
		f.t.Fatalf("insert %s: %v", table, err)
	}
}

func (f *fixture) handle(id int64, ident string) {
	f.insert(db.TableHandle, id, ident)
}

func (f *fixture) message(m msgRow) {
	text := m.text
	if text == nil && !m.noText {
		text = fmt.Sprintf("message %d", m.id)
	}
	f.insert(db.TableMessage,
		m.id, guidFor("m", m.id), text, m.handle, m.subject, nil, "iMessage",
		m.date, boolInt(m.fromMe), m.itemType, boolInt(m.audio))
}

func (f *fixture) attachment(id int64, filename string) {
	f.insert(db.TableAttachment, id, guidFor("a", id), filename, nil)
}

func (f *fixture) chat(id int64, guid string) {
	f.insert(db.TableChat, id, guid)
}

func (f *fixture) attach(messageID, attachmentID int64) {
	f.insert(db.TableMessageAttachmentJoin, messageID, attachmentID)
}

func (f *fixture) participant(chatID, handleID int64) {
	f.insert(db.TableChatHandleJoin, chatID, handleID)
}

func (f *fixture) member(chatID int64, messageIDs ...int64) {
	for _, id := range messageIDs {
		f.insert(db.TableChatMessageJoin, chatID, id)
	}
}

func (f *fixture) run(opts Options) *Result {
	f.t.Helper()
	res, err := Run(context.Background(), f.src, opts)
	if err != nil {
		f.t.Fatalf("run pipeline: %v", err)
	}
	return res
}

func defaultOptions() Options {
	return OptionsFromConfig(core.DefaultConfig())
}

func guidFor(prefix string, id int64) string {
	return fmt.Sprintf("%s-%d", prefix, id)
}

func boolInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func messageIDs(t *types.Thread) []int64 {
	ids := make([]int64, len(t.Messages))
	for i, msg := range t.Messages {
		ids[i] = msg.RowID
	}
	return ids
}

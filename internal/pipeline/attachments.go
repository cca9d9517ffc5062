package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/adamavenir/imsgexport/internal/types"
)

// CopyFunc places src into dir and returns the local filename.
type CopyFunc func(src, dir string) (string, error)

// PlaceAttachments hands every attachment of the exported threads to place.
// A failed copy is recorded on the attachment and logged; the message is
// still exported and points at the original path.
func PlaceAttachments(ctx context.Context, threads []*types.Thread, dir string, place CopyFunc, stats *Stats) error {
	for _, t := range threads {
		for _, msg := range t.Messages {
			for _, att := range msg.Attachments {
				if err := ctx.Err(); err != nil {
					return err
				}
				name, err := place(att.Filename, dir)
				if err != nil {
					att.CopyErr = err
					stats.CopyFailures++
					log.Warn().
						Err(err).
						Str("attachment", att.GUID).
						Str("message", msg.GUID).
						Str("path", att.Filename).
						Msg("attachment not copied")
					continue
				}
				att.LocalName = name
				stats.Copied++
				if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
					stats.CopiedBytes += info.Size()
				}
			}
		}
	}
	return nil
}

// Package export writes assembled threads to disk: one JSON document per
// thread, a companion index, and optionally one HTML page per thread.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamavenir/imsgexport/internal/core"
)

// IndexFile is the name of the companion document inside the threads dir.
const IndexFile = "index.json"

// Layout names the directories of an export tree.
type Layout struct {
	Root           string
	ThreadsDir     string
	AttachmentsDir string
	HTMLDir        string
}

// NewLayout builds the layout for an output directory from configuration.
func NewLayout(root string, cfg *core.Config) Layout {
	return Layout{
		Root:           root,
		ThreadsDir:     cfg.ThreadsDir,
		AttachmentsDir: cfg.AttachmentsDir,
		HTMLDir:        cfg.HTMLDir,
	}
}

func (l Layout) Threads() string     { return filepath.Join(l.Root, l.ThreadsDir) }
func (l Layout) Attachments() string { return filepath.Join(l.Root, l.AttachmentsDir) }
func (l Layout) HTML() string        { return filepath.Join(l.Root, l.HTMLDir) }

// Detect reports whether the output directory already holds an export: a
// threads or attachments directory is present.
func (l Layout) Detect() (bool, error) {
	for _, dir := range []string{l.Threads(), l.Attachments()} {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return false, fmt.Errorf("%s exists and is not a directory", dir)
			}
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
	}
	return false, nil
}

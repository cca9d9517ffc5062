package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adamavenir/imsgexport/internal/core"
	"github.com/adamavenir/imsgexport/internal/safecopy"
	"github.com/adamavenir/imsgexport/internal/types"
)

// Index is the companion document listing every exported thread.
type Index struct {
	ExportID   string       `json:"export_id"`
	ExportedAt string       `json:"exported_at"`
	Source     string       `json:"source"`
	Threads    []IndexEntry `json:"threads"`
}

// IndexEntry describes one thread file.
type IndexEntry struct {
	Identifier   string   `json:"identifier"`
	File         string   `json:"file"`
	Participants []string `json:"participants"`
	MessageCount int      `json:"message_count"`
}

// Writer writes thread documents into a layout.
type Writer struct {
	layout Layout
	source string
	now    func() time.Time
	names  map[string]string // file name -> thread id
	byID   map[string]string
}

// NewWriter returns a writer for the given layout. source is recorded in
// the index.
func NewWriter(layout Layout, source string) *Writer {
	return &Writer{
		layout: layout,
		source: source,
		now:    time.Now,
		names:  make(map[string]string),
		byID:   make(map[string]string),
	}
}

// ThreadFilename returns the file name for a thread id. Distinct ids whose
// slugs collide get the next name in the -1, -2 sequence; the same id always
// maps to the same name.
func (w *Writer) ThreadFilename(id string) string {
	if name, ok := w.byID[id]; ok {
		return name
	}
	slug := core.Slugify(id)
	if slug == "" {
		slug = "untitled"
	}
	name := "thread_" + slug + ".json"
	for {
		if _, taken := w.names[name]; !taken {
			break
		}
		name = safecopy.IncrementFilename(name)
	}
	w.names[name] = id
	w.byID[id] = name
	return name
}

// WriteThreads writes one document per thread and the index, and returns
// the index.
func (w *Writer) WriteThreads(threads []*types.Thread) (*Index, error) {
	dir := w.layout.Threads()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create threads dir: %w", err)
	}

	index := &Index{
		ExportID:   core.NewExportID(),
		ExportedAt: w.now().UTC().Format(time.RFC3339),
		Source:     w.source,
		Threads:    make([]IndexEntry, 0, len(threads)),
	}

	for _, t := range threads {
		name := w.ThreadFilename(t.ID)
		doc := NewThreadDocument(t)
		if err := writeJSON(filepath.Join(dir, name), doc); err != nil {
			return nil, fmt.Errorf("write thread %s: %w", t.ID, err)
		}
		log.Debug().Str("thread", t.ID).Str("file", name).Int("messages", len(doc.Messages)).Msg("thread written")
		index.Threads = append(index.Threads, IndexEntry{
			Identifier:   t.ID,
			File:         name,
			Participants: doc.Participants,
			MessageCount: len(doc.Messages),
		})
	}

	if err := writeJSON(filepath.Join(dir, IndexFile), index); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	return index, nil
}

// ReadIndex loads the index of an existing export.
func ReadIndex(layout Layout) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(layout.Threads(), IndexFile))
	if err != nil {
		return nil, err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &index, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func htmlName(jsonName string) string {
	return strings.TrimSuffix(jsonName, ".json") + ".html"
}

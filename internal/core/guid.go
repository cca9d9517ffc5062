package core

import "github.com/google/uuid"

// NewExportID returns a random identifier for one export run.
func NewExportID() string {
	return uuid.NewString()
}

package store

import (
	"context"
	"errors"
	"fmt"
)

// Message represents a persisted birthday message.
type Message struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Relationship *string   `json:"relationship"`
	Text         string    `json:"message"`
	CreatedAt    string    `json:"timestamp"`
	Photo        []byte    `json:"photo"` // base64 on the wire, null when absent
	Likes        int       `json:"likes"`
	Comments     []Comment `json:"comments"`
}

// Comment represents a reply attached to a message.
type Comment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	CreatedAt string `json:"timestamp"`
}

// Celebration is the single name/birthday record used by the verification gate.
type Celebration struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"` // YYYY-MM-DD
}

// IsConfigured reports whether both fields are set.
func (c Celebration) IsConfigured() bool {
	return c.Name != "" && c.Birthday != ""
}

// Backend loads and saves a whole document of type T.
// Load never fails: unusable storage yields the empty value for T.
// SaveAll always writes the complete document, never a delta.
type Backend[T any] interface {
	Load(ctx context.Context) T
	SaveAll(ctx context.Context, v T) error
}

// MessageBackend stores the message collection.
type MessageBackend = Backend[[]Message]

// CelebrationBackend stores the celebration record.
type CelebrationBackend = Backend[Celebration]

// Medium is a single addressable blob: a file on disk or a database row.
type Medium interface {
	// Read returns the stored bytes, or an error wrapping ErrMissing when nothing is stored.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored bytes.
	Write(ctx context.Context, data []byte) error

	// Exists reports whether anything is stored.
	Exists(ctx context.Context) bool

	// String names the medium in logs.
	String() string
}

// ErrMissing is returned by a Medium with nothing stored.
var ErrMissing = errors.New("document missing")

// PersistenceError is returned when both primary and backup writes failed.
type PersistenceError struct {
	Primary error
	Backup  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist document: primary: %v; backup: %v", e.Primary, e.Backup)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{e.Primary, e.Backup}
}

// Warning is a non-fatal save outcome. The data was written somewhere,
// and the operation's result is valid.
type Warning struct {
	Message string
}

func (w *Warning) Error() string {
	return w.Message
}

// IsWarning reports whether err only carries a non-fatal warning.
func IsWarning(err error) bool {
	var w *Warning
	return errors.As(err, &w)
}

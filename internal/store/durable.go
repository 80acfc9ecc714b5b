package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Durable applies the read-whole/write-whole document policy over a primary
// and a backup Medium:
//
//   - Load reads the primary; if it is missing or does not decode, it tries the
//     backup and, when that works, rewrites the primary from it. If neither is
//     usable Load returns the zero value of T.
//   - SaveAll overwrites the primary and re-reads it, comparing record counts.
//     A mismatch is reported as a *Warning; the write is not rolled back.
//   - If the primary write fails, the same bytes go to the backup (*Warning).
//     If that also fails SaveAll returns *PersistenceError.
//
// Durable holds no lock. Callers that need serialized load-modify-save must
// provide it; across processes the result is last-write-wins.
type Durable[T any] struct {
	primary Medium
	backup  Medium
	count   func(T) int
	log     *zerolog.Logger
}

// NewDurable builds a Durable document. count returns the number of records in
// a value and drives the post-write check; nil means one record per document.
func NewDurable[T any](primary, backup Medium, count func(T) int, logger *zerolog.Logger) *Durable[T] {
	if count == nil {
		count = func(T) int { return 1 }
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Durable[T]{
		primary: primary,
		backup:  backup,
		count:   count,
		log:     logger,
	}
}

// Load implements Backend.
func (d *Durable[T]) Load(ctx context.Context) T {
	v, err := d.read(ctx, d.primary)
	if err == nil {
		return v
	}
	if !errors.Is(err, ErrMissing) {
		d.log.Warn().Err(err).Str("medium", d.primary.String()).Msg("primary document unusable")
	}

	v, err = d.read(ctx, d.backup)
	if err != nil {
		if !errors.Is(err, ErrMissing) {
			d.log.Warn().Err(err).Str("medium", d.backup.String()).Msg("backup document unusable")
		}
		var zero T
		return zero
	}

	d.log.Warn().Str("medium", d.backup.String()).Msg("document restored from backup")
	if err := d.SaveAll(ctx, v); err != nil {
		d.log.Warn().Err(err).Str("medium", d.primary.String()).Msg("failed to repair primary document")
	}
	return v
}

// SaveAll implements Backend.
func (d *Durable[T]) SaveAll(ctx context.Context, v T) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if err := d.primary.Write(ctx, data); err != nil {
		d.log.Warn().Err(err).Str("medium", d.primary.String()).Msg("primary write failed, trying backup")
		if backupErr := d.backup.Write(ctx, data); backupErr != nil {
			d.log.Error().Err(backupErr).Str("medium", d.backup.String()).Msg("backup write failed")
			return &PersistenceError{Primary: err, Backup: backupErr}
		}
		return &Warning{Message: fmt.Sprintf("saved to backup location %s", d.backup)}
	}

	written, err := d.read(ctx, d.primary)
	if err != nil || d.count(written) != d.count(v) {
		d.log.Warn().Err(err).Str("medium", d.primary.String()).Msg("write verification failed")
		return &Warning{Message: "file save verification failed"}
	}
	return nil
}

// Exists reports whether the primary medium holds a document.
func (d *Durable[T]) Exists(ctx context.Context) bool {
	return d.primary.Exists(ctx)
}

func (d *Durable[T]) read(ctx context.Context, m Medium) (T, error) {
	var v T
	data, err := m.Read(ctx)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", m, err)
	}
	return v, nil
}

// Encode renders v as UTF-8 JSON with two-space indentation and without HTML escaping.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

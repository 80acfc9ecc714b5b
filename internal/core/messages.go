package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/store"
)

const (
	// MinMessageLength is the minimum trimmed length of a message text, in characters.
	MinMessageLength = 10
	// DefaultRecentLimit is how many messages Recent returns when asked for none.
	DefaultRecentLimit = 3
	// PreviewLength is the number of characters kept in a preview.
	PreviewLength = 50
)

// legacyNamespace seeds identifiers for stored records written without one.
var legacyNamespace = uuid.MustParse("5b0f0d39-5c1e-4f77-9f3a-3c4a2a8e6d10")

// NewMessage is the input for Append.
type NewMessage struct {
	Name         string
	Relationship string
	Text         string
	Photo        []byte
}

// Preview is a shortened message for activity lists.
type Preview struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Preview   string `json:"preview"`
	CreatedAt string `json:"timestamp"`
}

// Stats summarizes the message collection.
type Stats struct {
	Messages int `json:"messages"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// MessageOptions tunes a MessageService.
type MessageOptions struct {
	// MaxPhotoBytes caps photo size; zero means no cap.
	MaxPhotoBytes int
	// Now overrides the clock, for tests.
	Now func() time.Time
	// NewID overrides identifier generation, for tests.
	NewID func() string
}

// MessageService owns the birthday message collection.
//
// Every call re-reads the backend, works on a private copy, and writes the
// whole collection back. The mutex serializes writers inside this process;
// separate processes sharing the same document still race, and the later
// write wins.
type MessageService struct {
	backend store.MessageBackend
	opts    MessageOptions
	mu      sync.Mutex
	log     *zerolog.Logger
}

// NewMessageService creates a message service over backend.
func NewMessageService(backend store.MessageBackend, opts MessageOptions, logger *zerolog.Logger) *MessageService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	return &MessageService{
		backend: backend,
		opts:    opts,
		log:     logger,
	}
}

// List returns all messages, oldest first.
func (s *MessageService) List(ctx context.Context) []store.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Append validates and stores a new message.
// A *store.Warning error comes with a valid message.
func (s *MessageService) Append(ctx context.Context, in NewMessage) (*store.Message, error) {
	name := strings.TrimSpace(in.Name)
	text := strings.TrimSpace(in.Text)
	if name == "" {
		return nil, invalid("name", "please enter your name")
	}
	if text == "" {
		return nil, invalid("message", "please write a birthday message")
	}
	if utf8.RuneCountInString(text) < MinMessageLength {
		return nil, invalid("message", fmt.Sprintf("please write a longer message (at least %d characters)", MinMessageLength))
	}
	if err := validatePhoto(in.Photo, s.opts.MaxPhotoBytes); err != nil {
		return nil, err
	}

	msg := store.Message{
		ID:        s.opts.NewID(),
		Name:      name,
		Text:      text,
		CreatedAt: FormatTimestamp(s.opts.Now()),
		Likes:     0,
		Comments:  []store.Comment{},
	}
	if rel := strings.TrimSpace(in.Relationship); rel != "" {
		msg.Relationship = &rel
	}
	if len(in.Photo) > 0 {
		msg.Photo = in.Photo
	}

	err := s.update(ctx, func(msgs []store.Message) ([]store.Message, error) {
		return append(msgs, msg), nil
	})
	if err != nil && !store.IsWarning(err) {
		return nil, err
	}
	s.log.Info().Str("message_id", msg.ID).Str("name", msg.Name).Msg("message saved")
	return &msg, err
}

// Like adds one like to the located message.
func (s *MessageService) Like(ctx context.Context, loc Locator) (*store.Message, error) {
	var liked store.Message
	err := s.update(ctx, func(msgs []store.Message) ([]store.Message, error) {
		i, ok := loc.locate(msgs)
		if !ok {
			return nil, ErrNotFound
		}
		msgs[i].Likes++
		liked = msgs[i]
		return msgs, nil
	})
	if err != nil && !store.IsWarning(err) {
		return nil, err
	}
	return &liked, err
}

// AddComment appends a comment to the located message.
func (s *MessageService) AddComment(ctx context.Context, loc Locator, name, text string) (*store.Comment, error) {
	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	if name == "" {
		return nil, invalid("name", "please enter your name")
	}
	if text == "" {
		return nil, invalid("text", "please enter a comment")
	}

	comment := store.Comment{
		ID:        s.opts.NewID(),
		Name:      name,
		Text:      text,
		CreatedAt: FormatTimestamp(s.opts.Now()),
	}
	err := s.update(ctx, func(msgs []store.Message) ([]store.Message, error) {
		i, ok := loc.locate(msgs)
		if !ok {
			return nil, ErrNotFound
		}
		msgs[i].Comments = append(msgs[i].Comments, comment)
		return msgs, nil
	})
	if err != nil && !store.IsWarning(err) {
		return nil, err
	}
	return &comment, err
}

// Delete removes the located message; later messages shift down by one.
// Callers must check admin authorization first.
func (s *MessageService) Delete(ctx context.Context, loc Locator) error {
	err := s.update(ctx, func(msgs []store.Message) ([]store.Message, error) {
		i, ok := loc.locate(msgs)
		if !ok {
			return nil, ErrNotFound
		}
		s.log.Info().Str("message_id", msgs[i].ID).Str("name", msgs[i].Name).Msg("message deleted")
		return append(msgs[:i], msgs[i+1:]...), nil
	})
	return err
}

// ClearAll removes every message. Callers must check admin authorization first.
func (s *MessageService) ClearAll(ctx context.Context) error {
	err := s.update(ctx, func([]store.Message) ([]store.Message, error) {
		return []store.Message{}, nil
	})
	if err == nil || store.IsWarning(err) {
		s.log.Info().Msg("all messages cleared")
	}
	return err
}

// Recent returns previews of the last n messages in storage order.
func (s *MessageService) Recent(ctx context.Context, n int) []Preview {
	if n <= 0 {
		n = DefaultRecentLimit
	}
	msgs := s.List(ctx)
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Preview, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Preview{
			ID:        m.ID,
			Name:      m.Name,
			Preview:   Truncate(m.Text, PreviewLength),
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

// Stats counts messages, likes, and comments.
func (s *MessageService) Stats(ctx context.Context) Stats {
	var st Stats
	for _, m := range s.List(ctx) {
		st.Messages++
		st.Likes += m.Likes
		st.Comments += len(m.Comments)
	}
	return st
}

// Persisted reports whether the backend currently holds a stored collection.
// Backends that cannot tell report true.
func (s *MessageService) Persisted(ctx context.Context) bool {
	if e, ok := s.backend.(interface{ Exists(context.Context) bool }); ok {
		return e.Exists(ctx)
	}
	return true
}

func (s *MessageService) update(ctx context.Context, fn func([]store.Message) ([]store.Message, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.load(ctx))
	if err != nil {
		return err
	}
	if next == nil {
		next = []store.Message{}
	}
	return s.backend.SaveAll(ctx, next)
}

// load reads the collection and fills defaults on records written by older versions.
func (s *MessageService) load(ctx context.Context) []store.Message {
	msgs := s.backend.Load(ctx)
	if msgs == nil {
		return []store.Message{}
	}
	for i := range msgs {
		m := &msgs[i]
		if m.ID == "" {
			m.ID = legacyID(fmt.Sprintf("%d\x00%s\x00%s\x00%s", i, m.Name, m.CreatedAt, m.Text))
		}
		if m.Likes < 0 {
			m.Likes = 0
		}
		if m.Comments == nil {
			m.Comments = []store.Comment{}
		}
		for j := range m.Comments {
			if m.Comments[j].ID == "" {
				m.Comments[j].ID = legacyID(fmt.Sprintf("%s\x00%d", m.ID, j))
			}
		}
	}
	return msgs
}

func legacyID(seed string) string {
	return uuid.NewSHA1(legacyNamespace, []byte(seed)).String()
}

// Newest returns a copy of msgs in newest-first order.
func Newest(msgs []store.Message) []store.Message {
	out := make([]store.Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}

// Truncate shortens s to n characters, marking the cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

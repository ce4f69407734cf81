package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unowned-ai/notetable/pkg/storage"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrNoteNotFound      = errors.New("note not found")
)

// DefaultStorageKey is the blob key the store persists under.
const DefaultStorageKey = "notetable.notes"

// BlobStorage is the durable key/value store a NoteStore persists to.
// storage.LocalStorage satisfies it.
type BlobStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store holds the active and archived collections. Mutations never persist on
// their own; callers follow every mutation with Persist.
type Store struct {
	blobs  BlobStorage
	key    string
	logger *zap.Logger
	now    func() time.Time

	active   []*Note
	archived []*Note
}

type Option func(*Store)

func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty store. blobs may be nil for a store that is never persisted.
func NewStore(blobs BlobStorage, opts ...Option) *Store {
	s := &Store{
		blobs:    blobs,
		key:      DefaultStorageKey,
		logger:   zap.NewNop(),
		now:      time.Now,
		active:   []*Note{},
		archived: []*Note{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) list(c Collection) *[]*Note {
	if c == Archived {
		return &s.archived
	}
	return &s.active
}

// Notes returns the notes of c in order. The slice is a copy; the notes are shared.
func (s *Store) Notes(c Collection) []*Note {
	src := *s.list(c)
	out := make([]*Note, len(src))
	copy(out, src)
	return out
}

func (s *Store) Len(c Collection) int {
	return len(*s.list(c))
}

// Insert appends n to c. Id uniqueness is the caller's responsibility.
func (s *Store) Insert(c Collection, n *Note) {
	l := s.list(c)
	*l = append(*l, n)
}

// RemoveAt removes and returns the note at index in c.
// An out-of-range index is a no-op and reports false.
func (s *Store) RemoveAt(c Collection, index int) (*Note, bool) {
	l := s.list(c)
	if index < 0 || index >= len(*l) {
		return nil, false
	}
	n := (*l)[index]
	*l = append((*l)[:index:index], (*l)[index+1:]...)
	return n, true
}

// MoveByIndex moves the note at index from src to the end of dst.
func (s *Store) MoveByIndex(src, dst Collection, index int) (*Note, bool) {
	n, ok := s.RemoveAt(src, index)
	if !ok {
		return nil, false
	}
	s.Insert(dst, n)
	return n, true
}

// IndexOf returns the position of id in c, or -1.
func (s *Store) IndexOf(c Collection, id string) int {
	for i, n := range *s.list(c) {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// Find locates id in either collection.
func (s *Store) Find(id string) (*Note, Collection, int, bool) {
	for _, c := range Collections {
		if i := s.IndexOf(c, id); i >= 0 {
			return (*s.list(c))[i], c, i, true
		}
	}
	return nil, Active, -1, false
}

// Contains reports whether id is present in either collection.
func (s *Store) Contains(id string) bool {
	_, _, _, ok := s.Find(id)
	return ok
}

// NewNote builds a note with a fresh id that is not used in either collection,
// the current creation date and the dates found in content.
func (s *Store) NewNote(name, content, category string) *Note {
	id := GenerateKey()
	for s.Contains(id) {
		id = GenerateKey()
	}
	return &Note{
		ID:       id,
		Name:     name,
		Content:  content,
		Category: category,
		Created:  FormatDate(s.now()),
		Dates:    HighlightDates(content),
	}
}

// Statistics counts the notes of every fixed category in each collection.
func (s *Store) Statistics() []CategoryStats {
	stats := make([]CategoryStats, 0, len(categories))
	for _, category := range categories {
		stats = append(stats, CategoryStats{
			Category: category,
			Active:   s.CountByCategory(category, Active),
			Archived: s.CountByCategory(category, Archived),
		})
	}
	return stats
}

func (s *Store) CountByCategory(category string, c Collection) int {
	total := 0
	for _, n := range *s.list(c) {
		if n.Category == category {
			total++
		}
	}
	return total
}

// Snapshot returns the persisted form of the store.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Notes:         s.Notes(Active),
		ArchivedNotes: s.Notes(Archived),
	}
}

// Persist writes both collections to storage as one blob.
func (s *Store) Persist(ctx context.Context) error {
	if s.blobs == nil {
		return nil
	}

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to serialize notes: %w", err)
	}
	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to persist notes: %w", err)
	}

	s.logger.Debug("notes persisted",
		zap.String("key", s.key),
		zap.Int("active", len(s.active)),
		zap.Int("archived", len(s.archived)))
	return nil
}

// Load replaces both collections with the stored snapshot. A missing or
// malformed blob leaves the store empty; only storage failures are returned.
func (s *Store) Load(ctx context.Context) error {
	s.active = []*Note{}
	s.archived = []*Note{}

	if s.blobs == nil {
		return nil
	}

	data, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.Debug("no stored notes, starting empty", zap.String("key", s.key))
			return nil
		}
		return fmt.Errorf("failed to load notes: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("stored notes are malformed, starting empty",
			zap.String("key", s.key), zap.Error(err))
		return nil
	}

	s.active = compact(snap.Notes)
	s.archived = compact(snap.ArchivedNotes)
	return nil
}

// compact drops null entries a hand-edited blob may contain.
func compact(in []*Note) []*Note {
	out := make([]*Note, 0, len(in))
	for _, n := range in {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/notetable/pkg/db"
	"github.com/unowned-ai/notetable/pkg/storage"
)

type memoryBlobs struct {
	values map[string][]byte
	writes int
	err    error
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{values: map[string][]byte{}}
}

func (m *memoryBlobs) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return v, nil
}

func (m *memoryBlobs) Set(_ context.Context, key string, value []byte) error {
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.values[key] = value
	return nil
}

func fixedClock() time.Time {
	return time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) (*Store, *memoryBlobs) {
	t.Helper()
	blobs := newMemoryBlobs()
	return NewStore(blobs, WithClock(fixedClock)), blobs
}

func TestNewNote(t *testing.T) {
	s, _ := newTestStore(t)

	n := s.NewNote("Groceries", "Buy milk 5/1/2024", "Personal")

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "Groceries", n.Name)
	assert.Equal(t, "5/1/2024", n.Dates)
	assert.Equal(t, "May 1, 2024", n.Created)
	assert.Equal(t, "Personal", n.Category)
}

func TestNewNoteIDsUniqueAcrossCollections(t *testing.T) {
	s, _ := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := s.NewNote("name", "content", "Idea")
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
		if i%2 == 0 {
			s.Insert(Active, n)
		} else {
			s.Insert(Archived, n)
		}
	}
	assert.Equal(t, 25, s.Len(Active))
	assert.Equal(t, 25, s.Len(Archived))
}

func TestRemoveAt(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.NewNote("aaaa", "aaaa", "Task")
	b := s.NewNote("bbbb", "bbbb", "Task")
	s.Insert(Active, a)
	s.Insert(Active, b)

	removed, ok := s.RemoveAt(Active, 0)
	require.True(t, ok)
	assert.Same(t, a, removed)
	assert.Equal(t, []*Note{b}, s.Notes(Active))

	_, ok = s.RemoveAt(Active, 5)
	assert.False(t, ok)
	_, ok = s.RemoveAt(Active, -1)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len(Active))
	assert.Equal(t, 0, s.Len(Archived))
}

func TestMoveByIndexIsAnInvolution(t *testing.T) {
	s, _ := newTestStore(t)
	n := s.NewNote("Groceries", "Buy milk 5/1/2024", "Personal")
	before := *n
	s.Insert(Active, s.NewNote("first", "first", "Task"))
	s.Insert(Active, n)

	moved, ok := s.MoveByIndex(Active, Archived, s.IndexOf(Active, n.ID))
	require.True(t, ok)
	assert.Same(t, n, moved)
	assert.Equal(t, -1, s.IndexOf(Active, n.ID))
	assert.Equal(t, 0, s.IndexOf(Archived, n.ID))

	_, ok = s.MoveByIndex(Archived, Active, s.IndexOf(Archived, n.ID))
	require.True(t, ok)

	// Re-appended at the end of the destination.
	assert.Equal(t, 1, s.IndexOf(Active, n.ID))
	if diff := cmp.Diff(before, *n); diff != "" {
		t.Errorf("note changed across archive round trip (-before +after):\n%s", diff)
	}
}

func TestMoveByIndexOutOfRange(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok := s.MoveByIndex(Active, Archived, 0)
	assert.False(t, ok)
}

func TestFind(t *testing.T) {
	s, _ := newTestStore(t)
	n := s.NewNote("name", "content", "Idea")
	s.Insert(Archived, n)

	found, c, idx, ok := s.Find(n.ID)
	require.True(t, ok)
	assert.Same(t, n, found)
	assert.Equal(t, Archived, c)
	assert.Equal(t, 0, idx)

	_, _, idx, ok = s.Find("missing")
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestStatistics(t *testing.T) {
	s, _ := newTestStore(t)
	s.Insert(Active, s.NewNote("one1", "one1", "Task"))
	s.Insert(Active, s.NewNote("two2", "two2", "Task"))
	s.Insert(Archived, s.NewNote("thr3", "thr3", "Idea"))

	want := []CategoryStats{
		{Category: "Task", Active: 2, Archived: 0},
		{Category: "Random Thought", Active: 0, Archived: 0},
		{Category: "Idea", Active: 0, Archived: 1},
		{Category: "Personal", Active: 0, Archived: 0},
	}
	if diff := cmp.Diff(want, s.Statistics()); diff != "" {
		t.Errorf("statistics mismatch (-want +got):\n%s", diff)
	}
}

func TestStatisticsEmptyStore(t *testing.T) {
	s, _ := newTestStore(t)
	for _, st := range s.Statistics() {
		assert.Zero(t, st.Active, st.Category)
		assert.Zero(t, st.Archived, st.Category)
	}
}

func TestPersistAndLoad(t *testing.T) {
	s, blobs := newTestStore(t)
	a := s.NewNote("Groceries", "Buy milk 5/1/2024", "Personal")
	b := s.NewNote("Ideas", "Something clever", "Idea")
	s.Insert(Active, a)
	s.Insert(Archived, b)
	require.NoError(t, s.Persist(context.Background()))
	assert.Equal(t, 1, blobs.writes)

	reloaded := NewStore(blobs)
	require.NoError(t, reloaded.Load(context.Background()))

	if diff := cmp.Diff(s.Snapshot(), reloaded.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch after reload (-want +got):\n%s", diff)
	}
}

func TestLoadMissingOrMalformed(t *testing.T) {
	blobs := newMemoryBlobs()
	s := NewStore(blobs)
	require.NoError(t, s.Load(context.Background()))
	assert.Zero(t, s.Len(Active))

	blobs.values[DefaultStorageKey] = []byte("{not json")
	s.Insert(Active, s.NewNote("stale", "stale", "Task"))
	require.NoError(t, s.Load(context.Background()))
	assert.Zero(t, s.Len(Active))
	assert.Zero(t, s.Len(Archived))
}

func TestLoadDropsNullEntries(t *testing.T) {
	blobs := newMemoryBlobs()
	blobs.values[DefaultStorageKey] = []byte(`{"notes":[null,{"id":"x","name":"name","content":"body","category":"Task"}],"archivedNotes":null}`)

	s := NewStore(blobs)
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 1, s.Len(Active))
	assert.Equal(t, 0, s.Len(Archived))
}

func TestPersistPropagatesStorageError(t *testing.T) {
	s, blobs := newTestStore(t)
	blobs.err = errors.New("disk full")

	err := s.Persist(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, blobs.err)
}

func TestPersistWithCustomKeyOnSQLite(t *testing.T) {
	conn, err := db.Open(":memory:", false, "", nil)
	require.NoError(t, err)
	defer conn.Close()

	local := storage.NewLocalStorage(conn)
	s := NewStore(local, WithStorageKey("custom"))
	s.Insert(Active, s.NewNote("name", "content 1/2/2023", "Task"))
	require.NoError(t, s.Persist(context.Background()))

	_, err = local.Get(context.Background(), DefaultStorageKey)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	reloaded := NewStore(local, WithStorageKey("custom"))
	require.NoError(t, reloaded.Load(context.Background()))
	assert.Equal(t, 1, reloaded.Len(Active))
	assert.Equal(t, "1/2/2023", reloaded.Notes(Active)[0].Dates)
}

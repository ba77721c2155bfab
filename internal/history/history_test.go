package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/store"
)

func newTestStore(slot Slot) *Store {
	s := New(slot, nil)
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	seq := 0
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	s.newID = func() string {
		seq++
		return fmt.Sprintf("entry-%02d", seq)
	}
	return s
}

func graded(pct float64) quiz.EvaluationResult {
	return quiz.EvaluationResult{TotalQuestions: 5, CorrectCount: 3, IncorrectCount: 2, Percentage: pct}
}

func TestAppend_CreatesEntry(t *testing.T) {
	s := newTestStore(NewMemorySlot(nil))
	ctx := context.Background()

	entry, err := s.Append(ctx, graded(60), quiz.Quiz{Title: "BST Drill"})
	require.NoError(t, err)
	assert.Equal(t, "entry-01", entry.ID)
	assert.Equal(t, "BST Drill", entry.Title)
	assert.Equal(t, 60.0, entry.Percentage)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 1, 0, 0, time.UTC).UnixMilli(), entry.Timestamp)

	entries := s.Load(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestAppend_DefaultTitle(t *testing.T) {
	s := newTestStore(NewMemorySlot(nil))

	entry, err := s.Append(context.Background(), graded(0), quiz.Quiz{Title: "  "})
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, entry.Title)
}

func TestAppend_EvictsOldestBeyondTen(t *testing.T) {
	s := newTestStore(NewMemorySlot(nil))
	ctx := context.Background()

	for i := 1; i <= 11; i++ {
		_, err := s.Append(ctx, graded(float64(i)), quiz.Quiz{Title: fmt.Sprintf("Quiz %d", i)})
		require.NoError(t, err)
	}

	entries := s.Load(ctx)
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, "Quiz 11", entries[0].Title, "most recent first")
	assert.Equal(t, "Quiz 2", entries[MaxEntries-1].Title)
	for _, e := range entries {
		assert.NotEqual(t, "entry-01", e.ID, "oldest entry evicted")
	}
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i-1].Timestamp, entries[i].Timestamp)
	}
}

func TestLoad_MissingIsEmpty(t *testing.T) {
	s := newTestStore(NewMemorySlot(nil))
	entries := s.Load(context.Background())
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLoad_CorruptIsEmpty(t *testing.T) {
	s := newTestStore(NewMemorySlot([]byte(`{not json`)))
	assert.Empty(t, s.Load(context.Background()))

	// Appending over a corrupt ledger starts a fresh one.
	_, err := s.Append(context.Background(), graded(80), quiz.Quiz{Title: "Fresh"})
	require.NoError(t, err)
	assert.Len(t, s.Load(context.Background()), 1)
}

func TestLoad_ReadErrorIsEmpty(t *testing.T) {
	slot := NewMemorySlot(nil)
	slot.LoadErr = errors.New("disk gone")
	s := newTestStore(slot)

	assert.Empty(t, s.Load(context.Background()))
}

// flakySlot fails the next failLoads reads, then behaves like its MemorySlot.
type flakySlot struct {
	*MemorySlot
	failLoads int
}

func (f *flakySlot) Load(ctx context.Context) ([]byte, error) {
	if f.failLoads > 0 {
		f.failLoads--
		return nil, errors.New("database is locked")
	}
	return f.MemorySlot.Load(ctx)
}

func TestAppend_ReadErrorKeepsLedger(t *testing.T) {
	slot := &flakySlot{MemorySlot: NewMemorySlot(nil)}
	s := newTestStore(slot)
	ctx := context.Background()

	for i := 1; i <= 9; i++ {
		_, err := s.Append(ctx, graded(float64(i)), quiz.Quiz{Title: fmt.Sprintf("Quiz %d", i)})
		require.NoError(t, err)
	}
	before := slot.Bytes()

	slot.failLoads = 1
	_, err := s.Append(ctx, graded(99), quiz.Quiz{Title: "Quiz 10"})
	require.ErrorContains(t, err, "database is locked")
	assert.Equal(t, before, slot.Bytes(), "ledger must not be overwritten")
	assert.Len(t, s.Load(ctx), 9)

	_, err = s.Append(ctx, graded(99), quiz.Quiz{Title: "Quiz 10"})
	require.NoError(t, err)
	entries := s.Load(ctx)
	require.Len(t, entries, 10)
	assert.Equal(t, "Quiz 10", entries[0].Title)
}

func TestAppend_SaveErrorPropagates(t *testing.T) {
	slot := NewMemorySlot(nil)
	slot.SaveErr = errors.New("read-only")
	s := newTestStore(slot)

	_, err := s.Append(context.Background(), graded(10), quiz.Quiz{Title: "x"})
	require.Error(t, err)
	assert.Empty(t, s.Load(context.Background()))
}

func TestGet(t *testing.T) {
	s := newTestStore(NewMemorySlot(nil))
	ctx := context.Background()
	a, _ := s.Append(ctx, graded(10), quiz.Quiz{Title: "A"})
	_, _ = s.Append(ctx, graded(20), quiz.Quiz{Title: "B"})

	got, ok := s.Get(ctx, a.ID)
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)

	_, ok = s.Get(ctx, "nope")
	assert.False(t, ok)
}

func TestPersistsThroughSQLiteSlot(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	s := newTestStore(db.Slot("history"))
	q := quiz.Quiz{Title: "Heaps", Questions: []quiz.Question{{ID: 1, Type: quiz.FormatOpenEnded, Prompt: "Why?"}}}
	entry, err := s.Append(ctx, graded(40), q)
	require.NoError(t, err)

	reopened := New(db.Slot("history"), nil)
	entries := reopened.Load(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, q, entries[0].Quiz)
}

// Package history keeps the bounded ledger of graded sessions.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/studyaudit/internal/quiz"
)

// MaxEntries bounds the ledger.
const MaxEntries = 10

// DefaultTitle labels entries whose quiz has no title.
const DefaultTitle = "Untitled Audit"

// Entry is one graded session. Entries are never modified after creation.
type Entry struct {
	ID         string                `json:"id"`
	Timestamp  int64                 `json:"timestamp"` // epoch millis
	Title      string                `json:"title"`
	Percentage float64               `json:"percentage"`
	Evaluation quiz.EvaluationResult `json:"evaluation"`
	Quiz       quiz.Quiz             `json:"quiz"`
}

// Time returns the creation time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Slot is the durable medium holding the serialized ledger.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, value []byte) error
}

// Store is the HistoryStore: a most-recent-first ledger of at most
// MaxEntries entries, read and rewritten as a whole.
type Store struct {
	mu    sync.Mutex
	slot  Slot
	now   func() time.Time
	newID func() string
	log   logrus.FieldLogger
}

// New creates a Store over slot.
func New(slot Slot, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Store{
		slot:  slot,
		now:   time.Now,
		newID: uuid.NewString,
		log:   log,
	}
}

// Append records a graded session at the front of the ledger, evicting
// the oldest entries beyond MaxEntries, and returns the new entry.
func (s *Store) Append(ctx context.Context, eval quiz.EvaluationResult, q quiz.Quiz) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := strings.TrimSpace(q.Title)
	if title == "" {
		title = DefaultTitle
	}

	entry := Entry{
		ID:         s.newID(),
		Timestamp:  s.now().UnixMilli(),
		Title:      title,
		Percentage: eval.Percentage,
		Evaluation: eval,
		Quiz:       q,
	}

	existing, err := s.read(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("read history: %w", err)
	}
	entries := append([]Entry{entry}, existing...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return Entry{}, err
	}
	if err := s.slot.Save(ctx, data); err != nil {
		return Entry{}, err
	}

	s.log.WithFields(logrus.Fields{"entry_id": entry.ID, "entries": len(entries)}).Debug("history entry appended")
	return entry, nil
}

// Load returns the ledger, most recent first. A missing or unreadable
// ledger yields an empty slice.
func (s *Store) Load(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (Entry, bool) {
	return lo.Find(s.Load(ctx), func(e Entry) bool {
		return e.ID == id
	})
}

func (s *Store) load(ctx context.Context) []Entry {
	entries, err := s.read(ctx)
	if err != nil {
		s.log.WithError(err).Warn("history unreadable, starting empty")
		return []Entry{}
	}
	return entries
}

// read returns the stored ledger. Only a failed slot read is an error; a
// missing or corrupt value reads as empty so the next append starts fresh.
func (s *Store) read(ctx context.Context) ([]Entry, error) {
	data, err := s.slot.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.WithError(err).Warn("history corrupt, starting empty")
		return []Entry{}, nil
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries, nil
}

// MemorySlot is an in-process Slot.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte

	// LoadErr and SaveErr, when set, are returned by Load and Save.
	LoadErr error
	SaveErr error
}

// NewMemorySlot returns a slot preloaded with data.
func NewMemorySlot(data []byte) *MemorySlot {
	return &MemorySlot{data: data}
}

func (m *MemorySlot) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemorySlot) Save(ctx context.Context, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data = append([]byte(nil), value...)
	return nil
}

// Bytes returns the stored value.
func (m *MemorySlot) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

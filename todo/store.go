package todo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vinayprograms/todokit/errors"
	"github.com/vinayprograms/todokit/logging"
	"github.com/vinayprograms/todokit/telemetry"
)

// DefaultKey is the key the list is stored under unless WithKey says otherwise.
const DefaultKey = "todos.v1"

// maxIDAttempts bounds regeneration when a fresh id collides with an existing one.
const maxIDAttempts = 8

// Store holds the task list and writes it through to a KV on every change.
type Store struct {
	mu     sync.Mutex
	kv     KV
	key    string
	tasks  List
	logger *logging.Logger
	tracer *telemetry.Tracer
	idGen  func() string
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithTracer sets the tracer used for load and persist spans.
func WithTracer(t *telemetry.Tracer) Option {
	return func(s *Store) {
		s.tracer = t
	}
}

// WithIDGenerator sets a custom ID generator function.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.idGen = gen
	}
}

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store backed by kv. It does not read from kv;
// call Load for that.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		key:   DefaultKey,
		tasks: List{},
		idGen: NewID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.New().WithComponent("todo")
	}
	if s.tracer == nil {
		s.tracer = telemetry.GetTracer()
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory list with the stored one and returns a copy.
// It never fails: a missing, unreadable or malformed payload yields an empty
// list, and individual malformed records are dropped.
func (s *Store) Load() List {
	_, span := s.tracer.StartStoreSpan(context.Background(), "load", s.key)
	start := time.Now()

	list, dropped, err := s.read()

	s.mu.Lock()
	s.tasks = list
	s.mu.Unlock()

	s.tracer.EndStoreSpan(span, telemetry.StoreSpanOptions{Tasks: len(list), Dropped: dropped}, err)
	s.logger.Loaded(s.key, len(list), time.Since(start))
	return list.Clone()
}

// read fetches and decodes the payload. The returned error is informational.
func (s *Store) read() (List, int, error) {
	data, err := s.kv.Get(s.key)
	if err != nil {
		if isNotFound(err) {
			return List{}, 0, nil
		}
		s.logger.Warn("load_failed", map[string]interface{}{
			"key":   s.key,
			"error": err.Error(),
		})
		return List{}, 0, errors.WrapWithCode(err, errors.ErrCodeUnavailable, "read task list",
			errors.WithMetadata("key", s.key))
	}

	list, dropped, err := decode(data)
	if err != nil {
		s.logger.RecordsDropped(s.key, 0, err.Error())
		return list, 0, err
	}
	if dropped > 0 {
		s.logger.RecordsDropped(s.key, dropped, "malformed or duplicate record")
	}
	return list, dropped, nil
}

// Add trims text and inserts a new active task at the head of the list.
// Text that is empty after trimming is ignored and nothing is written.
func (s *Store) Add(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:        s.freshID(),
		Text:      text,
		Done:      false,
		CreatedAt: s.now().UnixMilli(),
	}
	next := make(List, 0, len(s.tasks)+1)
	next = append(next, t)
	next = append(next, s.tasks...)
	s.tasks = next

	s.logger.TaskChanged("add", t.ID, len(s.tasks))
	return s.persistLocked("add")
}

// freshID returns an id not already in the list. Caller holds s.mu.
func (s *Store) freshID() string {
	id := s.idGen()
	for i := 1; i < maxIDAttempts && s.tasks.Index(id) >= 0; i++ {
		id = s.idGen()
	}
	if s.tasks.Index(id) >= 0 {
		id = NewID()
	}
	return id
}

// Toggle flips the completion state of the task with the given id.
// An unknown id changes nothing; the snapshot is written either way.
func (s *Store) Toggle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.tasks.Clone()
	if i := next.Index(id); i >= 0 {
		next[i].Done = !next[i].Done
	}
	s.tasks = next

	s.logger.TaskChanged("toggle", id, len(s.tasks))
	return s.persistLocked("toggle")
}

// Remove deletes the task with the given id, keeping the order of the rest.
// An unknown id changes nothing; the snapshot is written either way.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(List, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	s.tasks = next

	s.logger.TaskChanged("remove", id, len(s.tasks))
	return s.persistLocked("remove")
}

// ClearCompleted removes every done task, keeping the order of the rest.
func (s *Store) ClearCompleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = Filtered(s.tasks, FilterActive)

	s.logger.TaskChanged("clear", "", len(s.tasks))
	return s.persistLocked("clear")
}

// Save writes the current list to the KV.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked("save")
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Clone()
}

// View returns the current tasks selected by f.
func (s *Store) View(f Filter) List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Filtered(s.tasks, f)
}

// Stats counts the current tasks.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.tasks)
}

// persistLocked writes the full snapshot. Caller holds s.mu.
// The in-memory list is left as is when the write fails.
func (s *Store) persistLocked(op string) error {
	_, span := s.tracer.StartStoreSpan(context.Background(), "persist", s.key)

	data, err := Encode(s.tasks)
	if err == nil {
		err = s.kv.Put(s.key, data)
	}
	s.tracer.EndStoreSpan(span, telemetry.StoreSpanOptions{Tasks: len(s.tasks), Bytes: len(data)}, err)

	if err != nil {
		s.logger.PersistFailed(s.key, len(s.tasks), err)
		return errors.WrapWithCode(err, errors.ErrCodeUnavailable, "save task list",
			errors.WithMetadata("key", s.key),
			errors.WithMetadata("op", op),
		)
	}
	return nil
}

// IsPersistError reports whether err is a failed snapshot write returned by
// a Store mutation.
func IsPersistError(err error) bool {
	return errors.Is(err, errors.ErrCodeUnavailable)
}

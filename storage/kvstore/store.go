// Package kvstore persists the entity collections as one JSON array per kind in a key/value backend.
package kvstore

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
)

type Kind string

// Kinds
const (
	Users     Kind = "users"
	Modules   Kind = "modules"
	Sessions  Kind = "sessions"
	Reminders Kind = "reminders"
)

// CurrentUserKey holds the snapshot of the signed-in user.
const CurrentUserKey = "tracked_current_user"

var (
	Kinds = []Kind{Users, Modules, Sessions, Reminders}

	keys = map[Kind]string{
		Users:     "tracked_all_users",
		Modules:   "tracked_modules",
		Sessions:  "tracked_sessions",
		Reminders: "tracked_reminders",
	}

	// timestamp field assigned on creation
	timestampFields = map[Kind]string{
		Users:     "created_at",
		Modules:   "created_at",
		Sessions:  "timestamp",
		Reminders: "created_at",
	}

	// fields an update may touch; sessions are immutable
	updatableFields = map[Kind]map[string]bool{
		Users:     {"email": true, "username": true, "password_hash": true, "password": true},
		Modules:   {"title": true, "description": true, "content": true},
		Sessions:  {},
		Reminders: {"scheduled_time": true, "completed": true},
	}

	// errors
	ErrUnknownKind       = errors.New("unknown entity kind")
	ErrFieldNotUpdatable = errors.New("field cannot be updated")
	ErrDuplicate         = errors.New("duplicate record")
)

// Key returns the storage key of a kind.
func (k Kind) Key() string { return keys[k] }

type Option func(*Store)

// WithSeedModules makes a never written modules collection read as the demo modules.
func WithSeedModules() Option {
	return func(s *Store) { s.seed = true }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the random identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store is safe for concurrent use inside one process.
// Writers in other processes sharing the same backend are not coordinated.
type Store struct {
	mu    sync.Mutex
	blobs Blobs
	seed  bool
	now   func() time.Time
	newID func() string
}

func New(blobs Blobs, opts ...Option) *Store {
	s := &Store{
		blobs: blobs,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every record of kind, in stored order (most recent first).
func (s *Store) List(ctx context.Context, kind Kind) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, kind)
}

// Create stores a copy of partial with a fresh id and timestamp, in front of the collection.
func (s *Store) Create(ctx context.Context, kind Kind, partial Record) (Record, error) {
	return s.create(ctx, kind, partial, nil)
}

// CreateUnique is Create, failing with ErrDuplicate when a record of kind already holds value in field, ignoring case.
// The check and the write happen under the same lock.
func (s *Store) CreateUnique(ctx context.Context, kind Kind, field, value string, partial Record) (Record, error) {
	return s.create(ctx, kind, partial, func(rec Record) bool {
		return strings.EqualFold(rec.String(field), value)
	})
}

func (s *Store) create(ctx context.Context, kind Kind, partial Record, conflicts func(Record) bool) (Record, error) {
	if _, ok := keys[kind]; !ok {
		return nil, ErrUnknownKind
	}

	rec := partial.Clone()
	rec["id"] = s.newID()
	rec[timestampFields[kind]] = FormatTime(s.now())
	if kind == Reminders {
		if _, ok := rec["completed"]; !ok {
			rec["completed"] = false
		}
	}
	rec, err := canonical(rec)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	if conflicts != nil {
		for _, existing := range recs {
			if conflicts(existing) {
				return nil, ErrDuplicate
			}
		}
	}
	recs = append([]Record{rec}, recs...)
	if err := s.save(ctx, kind, recs); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// Update merges partial into the record with id. A nil value removes the field.
// It returns false, and writes nothing, when no record has id.
func (s *Store) Update(ctx context.Context, kind Kind, id string, partial Record) (Record, bool, error) {
	allowed, ok := updatableFields[kind]
	if !ok {
		return nil, false, ErrUnknownKind
	}
	for field := range partial {
		if !allowed[field] {
			return nil, false, errors.Wrap(ErrFieldNotUpdatable, field)
		}
	}
	changes, err := canonical(partial)
	if err != nil {
		return nil, false, errors.Wrap(err, "encoding record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx, kind)
	if err != nil {
		return nil, false, err
	}
	for i, rec := range recs {
		if rec.ID() != id {
			continue
		}
		for field, v := range changes {
			if v == nil {
				delete(rec, field)
			} else {
				rec[field] = v
			}
		}
		recs[i] = rec
		if err := s.save(ctx, kind, recs); err != nil {
			return nil, false, err
		}
		return rec.Clone(), true, nil
	}
	return nil, false, nil
}

// Delete removes the record with id. It is a no-op when no record has id.
func (s *Store) Delete(ctx context.Context, kind Kind, id string) error {
	if _, ok := keys[kind]; !ok {
		return ErrUnknownKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx, kind)
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, rec := range recs {
		if rec.ID() != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(recs) {
		return nil
	}
	return s.save(ctx, kind, kept)
}

func (s *Store) SaveCurrentUser(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encoding current user")
	}
	return core.NewPersistenceError(s.blobs.Set(ctx, CurrentUserKey, data), "save current user")
}

// CurrentUser returns false when nobody is signed in.
func (s *Store) CurrentUser(ctx context.Context) (Record, bool, error) {
	data, ok, err := s.blobs.Get(ctx, CurrentUserKey)
	if err != nil {
		return nil, false, core.NewPersistenceError(err, "read current user")
	}
	if !ok || len(data) == 0 {
		return nil, false, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, core.NewPersistenceError(err, "decode current user")
	}
	if rec == nil {
		return nil, false, nil
	}
	return normalize(rec), true, nil
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	return core.NewPersistenceError(s.blobs.Delete(ctx, CurrentUserKey), "clear current user")
}

// load must be called with s.mu held.
func (s *Store) load(ctx context.Context, kind Kind) ([]Record, error) {
	key, ok := keys[kind]
	if !ok {
		return nil, ErrUnknownKind
	}

	data, found, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, core.NewPersistenceError(err, "read "+key)
	}
	if !found {
		if kind == Modules && s.seed {
			return s.seedModules(), nil
		}
		return []Record{}, nil
	}
	if len(data) == 0 {
		return []Record{}, nil
	}

	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, core.NewPersistenceError(err, "decode "+key)
	}
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if rec != nil {
			out = append(out, normalize(rec))
		}
	}
	return out, nil
}

// save must be called with s.mu held.
func (s *Store) save(ctx context.Context, kind Kind, recs []Record) error {
	key := keys[kind]
	data, err := json.Marshal(recs)
	if err != nil {
		return core.NewPersistenceError(err, "encode "+key)
	}
	return core.NewPersistenceError(s.blobs.Set(ctx, key, data), "write "+key)
}

func (s *Store) seedModules() []Record {
	createdAt := FormatTime(s.now())
	return []Record{
		{
			"id":          "1",
			"title":       "Introduction to Biology",
			"description": "Learn the basics of cell structure and function.",
			"content":     "Biology is the study of life. In this module, we explore how cells are the building blocks of every living organism...",
			"teacher_id":  "t1",
			"created_at":  createdAt,
		},
		{
			"id":          "2",
			"title":       "Advanced Calculus",
			"description": "Deep dive into integrals and derivatives.",
			"content":     "In this module, we focus on the fundamental theorem of calculus and its applications in real-world scenarios...",
			"teacher_id":  "t1",
			"created_at":  createdAt,
		},
	}
}

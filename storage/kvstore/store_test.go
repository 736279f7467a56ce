package kvstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/user"
)

var fixedNow = time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)

func newTestStore(blobs Blobs, opts ...Option) *Store {
	var n int
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return "id" + strconv.Itoa(n) }),
	}, opts...)
	return New(blobs, opts...)
}

func TestStore_CreateList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(NewMemoryBlobs())

	tests := []struct {
		name    string
		kind    Kind
		partial Record
		want    Record
	}{
		{
			name:    "user",
			kind:    Users,
			partial: Record{"email": "a@test.test", "username": "a", "role": "student"},
			want:    Record{"id": "id1", "email": "a@test.test", "username": "a", "role": "student", "created_at": FormatTime(fixedNow)},
		},
		{
			name:    "module",
			kind:    Modules,
			partial: Record{"title": "Cells", "description": "", "content": "<p>x</p>", "teacher_id": "t1"},
			want:    Record{"id": "id2", "title": "Cells", "description": "", "content": "<p>x</p>", "teacher_id": "t1", "created_at": FormatTime(fixedNow)},
		},
		{
			name:    "session",
			kind:    Sessions,
			partial: Record{"student_id": "s1", "module_id": "m1", "duration": 70},
			want:    Record{"id": "id3", "student_id": "s1", "module_id": "m1", "duration": float64(70), "timestamp": FormatTime(fixedNow)},
		},
		{
			name:    "reminder defaults to not completed",
			kind:    Reminders,
			partial: Record{"student_id": "s1", "module_id": "m1", "module_title": "Cells", "scheduled_time": "2024-03-05T10:00:00Z"},
			want: Record{
				"id": "id4", "student_id": "s1", "module_id": "m1", "module_title": "Cells",
				"scheduled_time": "2024-03-05T10:00:00Z", "completed": false, "created_at": FormatTime(fixedNow),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Create(ctx, tt.kind, tt.partial)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			recs, err := store.List(ctx, tt.kind)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.want, recs[0])
		})
	}
}

func TestStore_CreatePrepends(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(NewMemoryBlobs())

	for _, title := range []string{"first", "second", "third"} {
		_, err := store.Create(ctx, Modules, Record{"title": title})
		require.NoError(t, err)
	}

	recs, err := store.List(ctx, Modules)
	require.NoError(t, err)
	titles := make([]string, 0, len(recs))
	for _, rec := range recs {
		titles = append(titles, rec.String("title"))
	}
	assert.Equal(t, []string{"third", "second", "first"}, titles)
}

// slowBlobs yields on every read so concurrent writers interleave.
type slowBlobs struct {
	Blobs
}

func (b slowBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	time.Sleep(time.Millisecond)
	return b.Blobs.Get(ctx, key)
}

func TestStore_CreateUnique(t *testing.T) {
	ctx := context.Background()
	store := New(slowBlobs{NewMemoryBlobs()})

	_, err := store.CreateUnique(ctx, Users, "email", "a@test.test", Record{"email": "a@test.test", "username": "a"})
	require.NoError(t, err)
	_, err = store.CreateUnique(ctx, Users, "email", "A@Test.test", Record{"email": "A@Test.test", "username": "b"})
	assert.Equal(t, ErrDuplicate, err)

	const writers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.CreateUnique(ctx, Users, "email", "c@test.test", Record{"email": "c@test.test", "username": fmt.Sprint("c", i)})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			assert.Equal(t, ErrDuplicate, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, created)

	recs, err := store.List(ctx, Users)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestUserRepository_ConcurrentSignUp(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(New(slowBlobs{NewMemoryBlobs()}))

	errs := make(chan error, 10)
	for i := 0; i < cap(errs); i++ {
		go func() {
			_, err := repo.CreateUser(ctx, user.User{Email: "same@test.test", Username: "same", Role: core.RoleStudent})
			errs <- err
		}()
	}
	var duplicates int
	for i := 0; i < cap(errs); i++ {
		if err := <-errs; err != nil {
			assert.Equal(t, user.ErrDuplicateUser, err)
			duplicates++
		}
	}
	assert.Equal(t, cap(errs)-1, duplicates)

	u, err := repo.GetUserByEmail(ctx, "same@test.test")
	require.NoError(t, err)
	assert.Equal(t, "same", u.Username)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobs()
	store := newTestStore(blobs)

	mod, err := store.Create(ctx, Modules, Record{"title": "Cells", "description": "desc", "content": "body", "teacher_id": "t1"})
	require.NoError(t, err)

	t.Run("merges fields", func(t *testing.T) {
		got, found, err := store.Update(ctx, Modules, mod.ID(), Record{"title": "Cells 101"})
		require.NoError(t, err)
		require.True(t, found)

		want := mod.Clone()
		want["title"] = "Cells 101"
		assert.Equal(t, want, got)

		recs, err := store.List(ctx, Modules)
		require.NoError(t, err)
		assert.Equal(t, []Record{want}, recs)
	})

	t.Run("absent id", func(t *testing.T) {
		before, _, _ := blobs.Get(ctx, Modules.Key())
		got, found, err := store.Update(ctx, Modules, "nope", Record{"title": "x"})
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
		after, _, _ := blobs.Get(ctx, Modules.Key())
		assert.Equal(t, before, after)
	})

	t.Run("field not updatable", func(t *testing.T) {
		for _, field := range []string{"id", "teacher_id", "created_at", "teacherId"} {
			_, _, err := store.Update(ctx, Modules, mod.ID(), Record{"title": "x", field: "y"})
			assert.True(t, errors.Is(err, ErrFieldNotUpdatable), field)
		}
		recs, err := store.List(ctx, Modules)
		require.NoError(t, err)
		assert.Equal(t, "Cells 101", recs[0].String("title"))
	})

	t.Run("sessions are immutable", func(t *testing.T) {
		sess, err := store.Create(ctx, Sessions, Record{"student_id": "s1", "module_id": mod.ID(), "duration": 60})
		require.NoError(t, err)
		_, _, err = store.Update(ctx, Sessions, sess.ID(), Record{"duration": 600})
		assert.True(t, errors.Is(err, ErrFieldNotUpdatable))
	})

	t.Run("nil removes the field", func(t *testing.T) {
		usr, err := store.Create(ctx, Users, Record{"email": "a@test.test", "password": "plain"})
		require.NoError(t, err)
		got, found, err := store.Update(ctx, Users, usr.ID(), Record{"password_hash": "hash", "password": nil})
		require.NoError(t, err)
		require.True(t, found)
		assert.NotContains(t, got, "password")
		assert.Equal(t, "hash", got.String("password_hash"))
	})
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(NewMemoryBlobs())

	a, err := store.Create(ctx, Reminders, Record{"student_id": "s1"})
	require.NoError(t, err)
	b, err := store.Create(ctx, Reminders, Record{"student_id": "s1"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, Reminders, a.ID()))
	require.NoError(t, store.Delete(ctx, Reminders, a.ID()))    // already gone
	require.NoError(t, store.Delete(ctx, Reminders, "missing")) // never existed

	recs, err := store.List(ctx, Reminders)
	require.NoError(t, err)
	assert.Equal(t, []Record{b}, recs)
}

// Random create/update/delete sequences must leave the collection equal to
// an ordered in-memory model fed the same operations.
func TestStore_ReplayMatchesReferenceModel(t *testing.T) {
	ctx := context.Background()
	titles := []string{"Cells", "Integrals", "Atoms", "Poetry", "Rome"}

	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rnd := rand.New(rand.NewSource(seed))
			store := newTestStore(NewMemoryBlobs())

			var model []Record
			indexOf := func(id string) int {
				for i, rec := range model {
					if rec.ID() == id {
						return i
					}
				}
				return -1
			}
			pickID := func() string {
				if len(model) == 0 || rnd.Intn(5) == 0 {
					return "missing"
				}
				return model[rnd.Intn(len(model))].ID()
			}

			for op := 0; op < 60; op++ {
				switch rnd.Intn(3) {
				case 0:
					partial := Record{"title": titles[rnd.Intn(len(titles))], "teacher_id": "t" + strconv.Itoa(rnd.Intn(3))}
					rec, err := store.Create(ctx, Modules, partial)
					require.NoError(t, err)

					want := partial.Clone()
					want["id"] = rec.ID()
					want["created_at"] = FormatTime(fixedNow)
					model = append([]Record{want}, model...)
				case 1:
					id := pickID()
					partial := Record{"description": "rev " + strconv.Itoa(op)}
					if rnd.Intn(2) == 0 {
						partial["title"] = titles[rnd.Intn(len(titles))]
					}
					_, found, err := store.Update(ctx, Modules, id, partial)
					require.NoError(t, err)

					i := indexOf(id)
					assert.Equal(t, i >= 0, found)
					if i >= 0 {
						for k, v := range partial {
							model[i][k] = v
						}
					}
				case 2:
					id := pickID()
					require.NoError(t, store.Delete(ctx, Modules, id))
					if i := indexOf(id); i >= 0 {
						model = append(model[:i], model[i+1:]...)
					}
				}
			}

			got, err := store.List(ctx, Modules)
			require.NoError(t, err)
			if model == nil {
				model = []Record{}
			}
			assert.Equal(t, model, got)
		})
	}
}

func TestStore_LegacyFieldNames(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobs()
	raw := `[
		{"id":"s1","studentId":"u1","moduleId":"m1","duration":70,"timestamp":"2024-01-01T00:00:00Z"},
		{"id":"s2","student_id":"u1","module_id":"m2","moduleId":"ignored","duration":125,"timestamp":"2024-01-02T00:00:00Z"}
	]`
	require.NoError(t, blobs.Set(ctx, Sessions.Key(), []byte(raw)))

	store := newTestStore(blobs)
	recs, err := store.List(ctx, Sessions)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "u1", recs[0].String("student_id"))
	assert.Equal(t, "m1", recs[0].String("module_id"))
	assert.NotContains(t, recs[0], "moduleId")
	assert.NotContains(t, recs[0], "studentId")
	assert.Equal(t, "m2", recs[1].String("module_id"))
	assert.NotContains(t, recs[1], "moduleId")
}

func TestStore_SeedModules(t *testing.T) {
	ctx := context.Background()

	t.Run("never written", func(t *testing.T) {
		store := newTestStore(NewMemoryBlobs(), WithSeedModules())
		recs, err := store.List(ctx, Modules)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "Introduction to Biology", recs[0].String("title"))
		assert.Equal(t, "Advanced Calculus", recs[1].String("title"))

		// seed is persisted with the first write
		_, err = store.Create(ctx, Modules, Record{"title": "Mine"})
		require.NoError(t, err)
		recs, err = store.List(ctx, Modules)
		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})

	t.Run("emptied collection stays empty", func(t *testing.T) {
		store := newTestStore(NewMemoryBlobs(), WithSeedModules())
		require.NoError(t, store.Delete(ctx, Modules, "1"))
		require.NoError(t, store.Delete(ctx, Modules, "2"))
		recs, err := store.List(ctx, Modules)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("without seed", func(t *testing.T) {
		store := newTestStore(NewMemoryBlobs())
		recs, err := store.List(ctx, Modules)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestStore_CurrentUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(NewMemoryBlobs())

	_, ok, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveCurrentUser(ctx, Record{"id": "u1", "email": "a@test.test", "role": "student"}))
	rec, ok, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", rec.ID())

	require.NoError(t, store.ClearCurrentUser(ctx))
	_, ok, err = store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingBlobs struct{ *MemoryBlobs }

var errBackend = errors.New("backend down")

func (b *failingBlobs) Set(context.Context, string, []byte) error { return errBackend }

func TestStore_PersistenceError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(&failingBlobs{NewMemoryBlobs()})

	_, err := store.Create(ctx, Sessions, Record{"student_id": "s1"})
	require.Error(t, err)
	assert.True(t, core.IsPersistence(err))
	assert.True(t, errors.Is(err, errBackend))
}

func TestStore_UnknownKind(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(NewMemoryBlobs())

	_, err := store.List(ctx, Kind("grades"))
	assert.Equal(t, ErrUnknownKind, err)
	_, err = store.Create(ctx, Kind("grades"), Record{})
	assert.Equal(t, ErrUnknownKind, err)
}

func TestFileBlobs(t *testing.T) {
	ctx := context.Background()
	blobs, err := NewFileBlobs(t.TempDir())
	require.NoError(t, err)

	_, ok, err := blobs.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, blobs.Set(ctx, "k", []byte("[1]")))
	require.NoError(t, blobs.Set(ctx, "k", []byte("[1,2]")))
	data, ok, err := blobs.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2]", string(data))

	require.NoError(t, blobs.Delete(ctx, "k"))
	require.NoError(t, blobs.Delete(ctx, "k"))
	_, ok, err = blobs.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// a store over files survives reopening
	dir := t.TempDir()
	fb, err := NewFileBlobs(dir)
	require.NoError(t, err)
	_, err = New(fb).Create(ctx, Modules, Record{"title": "Cells"})
	require.NoError(t, err)

	fb, err = NewFileBlobs(dir)
	require.NoError(t, err)
	recs, err := New(fb).List(ctx, Modules)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Cells", recs[0].String("title"))
}

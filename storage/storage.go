// Package storage opens the configured persistence backend.
package storage

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/reminder"
	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/user"
	"github.com/tracked-edu/tracked/storage/database"
	sqlxrepos "github.com/tracked-edu/tracked/storage/database/sqlx"
	"github.com/tracked-edu/tracked/storage/kvstore"
)

const redisPrefix = "tracked:"

var ErrUnknownBackend = errors.New("unknown store backend")

type Repositories struct {
	// Store holds the collections of the key/value backends.
	// With postgres it only keeps the current-user snapshot.
	Store     *kvstore.Store
	DB        *sqlx.DB // postgres only
	Users     user.Repository
	Modules   module.Repository
	Sessions  session.Repository
	Reminders reminder.Repository

	closers []func() error
}

func (r *Repositories) Close() error {
	var first error
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func Open(ctx context.Context, conf *core.Config) (*Repositories, error) {
	var opts []kvstore.Option
	if conf.Store.SeedModules {
		opts = append(opts, kvstore.WithSeedModules())
	}

	switch conf.Store.Backend {
	case core.StoreMemory:
		return kvRepositories(kvstore.New(kvstore.NewMemoryBlobs(), opts...)), nil

	case core.StoreFile, "":
		blobs, err := kvstore.NewFileBlobs(conf.Store.Dir)
		if err != nil {
			return nil, errors.Wrap(err, "opening file store")
		}
		return kvRepositories(kvstore.New(blobs, opts...)), nil

	case core.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, "connecting to redis")
		}
		repos := kvRepositories(kvstore.New(kvstore.NewRedisBlobs(client, redisPrefix), opts...))
		repos.closers = append(repos.closers, client.Close)
		return repos, nil

	case core.StorePostgres:
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err := database.Ping(ctx, db.DB); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "connecting to database")
		}

		var snapshot kvstore.Blobs = kvstore.NewMemoryBlobs()
		if conf.Store.Dir != "" {
			if snapshot, err = kvstore.NewFileBlobs(conf.Store.Dir); err != nil {
				_ = db.Close()
				return nil, errors.Wrap(err, "opening file store")
			}
		}
		return &Repositories{
			Store:     kvstore.New(snapshot),
			DB:        db,
			Users:     sqlxrepos.NewUserRepository(db),
			Modules:   sqlxrepos.NewModuleRepository(db),
			Sessions:  sqlxrepos.NewSessionRepository(db),
			Reminders: sqlxrepos.NewReminderRepository(db),
			closers:   []func() error{db.Close},
		}, nil
	}
	return nil, errors.Wrap(ErrUnknownBackend, conf.Store.Backend)
}

func kvRepositories(store *kvstore.Store) *Repositories {
	return &Repositories{
		Store:     store,
		Users:     kvstore.NewUserRepository(store),
		Modules:   kvstore.NewModuleRepository(store),
		Sessions:  kvstore.NewSessionRepository(store),
		Reminders: kvstore.NewReminderRepository(store),
	}
}

// Prepare opens the configured backend. With postgres it also creates the database
// when admin credentials are configured, and applies the pending migrations.
func Prepare(ctx context.Context, conf *core.Config) (*Repositories, error) {
	if conf.Store.Backend == core.StorePostgres && conf.Database.AdminUser != "" {
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
	}

	repos, err := Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if repos.DB != nil {
		if err = database.Migrate(ctx, repos.DB.DB, "up"); err != nil {
			_ = repos.Close()
			return nil, err
		}
	}
	return repos, nil
}

package storage

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		backend string
		seed    bool
		want    int
	}{
		{name: "memory", backend: core.StoreMemory},
		{name: "memory seeded", backend: core.StoreMemory, seed: true, want: 2},
		{name: "file", backend: core.StoreFile},
		{name: "file seeded", backend: core.StoreFile, seed: true, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := core.NewTestConfig()
			conf.Store.Backend = tt.backend
			conf.Store.Dir = t.TempDir()
			conf.Store.SeedModules = tt.seed

			repos, err := Open(ctx, conf)
			require.NoError(t, err)
			defer func() { assert.NoError(t, repos.Close()) }()

			mods, err := repos.Modules.QueryModules(ctx, module.QueryFilter{})
			require.NoError(t, err)
			assert.Len(t, mods, tt.want)
			assert.NotNil(t, repos.Store)
		})
	}
}

func TestOpen_FilePersists(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	conf.Store.Backend = core.StoreFile
	conf.Store.Dir = t.TempDir()

	repos, err := Open(ctx, conf)
	require.NoError(t, err)
	_, err = repos.Modules.CreateModule(ctx, module.Module{Title: "Biology", TeacherID: "t1"})
	require.NoError(t, err)

	reopened, err := Open(ctx, conf)
	require.NoError(t, err)
	mods, err := reopened.Modules.QueryModules(ctx, module.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "Biology", mods[0].Title)
}

func TestOpen_UnknownBackend(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Store.Backend = "cassandra"
	_, err := Open(context.Background(), conf)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

package module_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/user"
	"github.com/tracked-edu/tracked/tests"
)

type fixture struct {
	svc     *module.Service
	repos   testutil.Repos
	teacher user.User
	other   user.User
	student user.User
}

func setup(t *testing.T) fixture {
	repos := testutil.NewRepos()
	validate, _ := testutil.NewValidator()
	return fixture{
		svc:     module.NewService(repos.Modules, validate),
		repos:   repos,
		teacher: testutil.CreateUser(t, repos.Users, "teacher@test.test", "teacher", "", core.RoleTeacher),
		other:   testutil.CreateUser(t, repos.Users, "other@test.test", "other", "", core.RoleTeacher),
		student: testutil.CreateUser(t, repos.Users, "student@test.test", "student", "", core.RoleStudent),
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	tests := []struct {
		name    string
		ctx     context.Context
		nm      module.NewModule
		wantErr error
	}{
		{name: "anonymous", ctx: ctx, nm: module.NewModule{Title: "Cells"}, wantErr: core.ErrNotAuthenticated},
		{name: "student", ctx: testutil.AsUser(ctx, f.student), nm: module.NewModule{Title: "Cells"}, wantErr: core.ErrPermissionDenied},
		{name: "teacher", ctx: testutil.AsUser(ctx, f.teacher), nm: module.NewModule{Title: " Cells ", Description: "Intro", Content: "<p>x</p>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := f.svc.Create(tt.ctx, tt.nm)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, mod.ID)
			assert.Equal(t, "Cells", mod.Title)
			assert.Equal(t, f.teacher.ID, mod.TeacherID)
			assert.Equal(t, module.ContentMarkup, mod.ContentKind())
		})
	}

	_, err := f.svc.Create(testutil.AsUser(ctx, f.teacher), module.NewModule{Title: "  "})
	var vErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &vErrs)
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	bio := testutil.CreateModule(t, f.repos.Modules, f.teacher.ID, "Introduction to Biology")
	calc := testutil.CreateModule(t, f.repos.Modules, f.teacher.ID, "Advanced Calculus")
	marine := testutil.CreateModule(t, f.repos.Modules, f.other.ID, "Marine biology")

	ids := func(mods []module.Module) []string {
		out := make([]string, 0, len(mods))
		for _, m := range mods {
			out = append(out, m.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter module.QueryFilter
		want   []string
	}{
		{name: "all, newest first", want: []string{marine.ID, calc.ID, bio.ID}},
		{name: "search is case insensitive", filter: module.QueryFilter{Search: " BIOLOGY "}, want: []string{marine.ID, bio.ID}},
		{name: "by teacher", filter: module.QueryFilter{TeacherID: f.teacher.ID}, want: []string{calc.ID, bio.ID}},
		{name: "by teacher and search", filter: module.QueryFilter{TeacherID: f.other.ID, Search: "calc"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods, err := f.svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(mods))
		})
	}
}

func TestService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	mod := testutil.CreateModule(t, f.repos.Modules, f.teacher.ID, "Cells")
	asTeacher := testutil.AsUser(ctx, f.teacher)
	str := func(s string) *string { return &s }

	t.Run("not owner", func(t *testing.T) {
		_, err := f.svc.Update(testutil.AsUser(ctx, f.other), mod.ID, module.UpdateModule{Title: str("Mine")})
		assert.Equal(t, core.ErrPermissionDenied, err)
		assert.Equal(t, core.ErrPermissionDenied, f.svc.Delete(testutil.AsUser(ctx, f.other), mod.ID))
		assert.Equal(t, core.ErrPermissionDenied, f.svc.Delete(testutil.AsUser(ctx, f.student), mod.ID))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.svc.Update(asTeacher, "missing", module.UpdateModule{Title: str("x")})
		assert.Equal(t, module.ErrNotFound, err)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := f.svc.Update(asTeacher, mod.ID, module.UpdateModule{Title: str("  ")})
		assert.Error(t, err)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		got, err := f.svc.Update(asTeacher, mod.ID, module.UpdateModule{Content: str("https://example.com")})
		require.NoError(t, err)
		assert.Equal(t, "Cells", got.Title)
		assert.Equal(t, mod.Description, got.Description)
		assert.Equal(t, "https://example.com", got.Content)
		assert.Equal(t, module.ContentURL, got.ContentKind())
	})

	t.Run("export", func(t *testing.T) {
		name, body, err := f.svc.Export(ctx, mod.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cells.txt", name)
		assert.Contains(t, body, "TITLE: Cells\n\nDESCRIPTION: Cells description\n\nCONTENT:\nhttps://example.com")
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(asTeacher, mod.ID))
		_, err := f.svc.GetByID(ctx, mod.ID)
		assert.Equal(t, module.ErrNotFound, err)
	})
}

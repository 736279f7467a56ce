package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/user"
	"github.com/tracked-edu/tracked/storage/kvstore"
	"github.com/tracked-edu/tracked/tests"
)

const pwd = "Secr3t-pass"

func setup() (*user.Service, testutil.Repos) {
	repos := testutil.NewRepos()
	validate, _ := testutil.NewValidator()
	return user.NewService(repos.Users, validate), repos
}

func TestService_SignUpSignIn(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup()

	registrations := []user.NewUser{
		{Email: "alice@test.test", Username: "alice", Password: pwd, Role: core.RoleStudent},
		{Email: "Bob@Test.test ", Username: " bob ", Password: "an0ther-pass", Role: core.RoleTeacher},
		{Email: "carol@test.test", Username: "carol", Password: "th1rd-pass!", Role: "STUDENT"},
	}
	for _, nu := range registrations {
		pass := nu.Password
		created, err := svc.SignUp(ctx, nu)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		signedIn, err := svc.SignIn(ctx, created.Email, pass)
		require.NoError(t, err)
		assert.Equal(t, created.ID, signedIn.ID)
	}

	usr, err := svc.SignIn(ctx, "BOB@test.test", "an0ther-pass")
	require.NoError(t, err)
	assert.Equal(t, "bob@test.test", usr.Email)
	assert.Equal(t, "bob", usr.Username)
	assert.Equal(t, core.RoleTeacher, usr.Role)
}

func TestService_SignUpDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, repos := setup()

	_, err := svc.SignUp(ctx, user.NewUser{Email: "alice@test.test", Username: "alice", Password: pwd, Role: core.RoleStudent})
	require.NoError(t, err)
	before, err := repos.Store.List(ctx, kvstore.Users)
	require.NoError(t, err)

	for _, email := range []string{"alice@test.test", "ALICE@test.test"} {
		_, err = svc.SignUp(ctx, user.NewUser{Email: email, Username: "other", Password: "0ther-pass", Role: core.RoleTeacher})
		assert.Equal(t, user.ErrDuplicateUser, err)
	}

	after, err := repos.Store.List(ctx, kvstore.Users)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_SignUpValidation(t *testing.T) {
	svc, _ := setup()

	tests := []struct {
		name  string
		nu    user.NewUser
		field string
	}{
		{name: "missing email", nu: user.NewUser{Username: "alice", Password: pwd, Role: core.RoleStudent}, field: "email"},
		{name: "invalid email", nu: user.NewUser{Email: "alice", Username: "alice", Password: pwd, Role: core.RoleStudent}, field: "email"},
		{name: "blank username", nu: user.NewUser{Email: "a@test.test", Username: "  ", Password: pwd, Role: core.RoleStudent}, field: "username"},
		{name: "invalid role", nu: user.NewUser{Email: "a@test.test", Username: "alice", Password: pwd, Role: "admin"}, field: "role"},
		{name: "short password", nu: user.NewUser{Email: "a@test.test", Username: "alice", Password: "s3cret", Role: core.RoleStudent}, field: "password"},
		{name: "numeric password", nu: user.NewUser{Email: "a@test.test", Username: "alice", Password: "1234567890", Role: core.RoleStudent}, field: "password"},
		{name: "password with spaces", nu: user.NewUser{Email: "a@test.test", Username: "alice", Password: "pass word 1", Role: core.RoleStudent}, field: "password"},
		{name: "password like username", nu: user.NewUser{Email: "a@test.test", Username: "alicewonder", Password: "alicewonder1", Role: core.RoleStudent}, field: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.nu)
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			fields := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				fields = append(fields, fe.Field())
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestService_SignInInvalid(t *testing.T) {
	ctx := context.Background()
	svc, repos := setup()
	testutil.CreateUser(t, repos.Users, "alice@test.test", "alice", pwd, core.RoleStudent)

	tests := []struct {
		name       string
		email, pwd string
	}{
		{name: "wrong password", email: "alice@test.test", pwd: "wr0ng-pass"},
		{name: "unknown email", email: "nobody@test.test", pwd: pwd},
		{name: "empty password", email: "alice@test.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignIn(ctx, tt.email, tt.pwd)
			assert.Equal(t, user.ErrInvalidCredentials, err)
		})
	}
}

func TestService_SignInUpgradesLegacyPassword(t *testing.T) {
	ctx := context.Background()
	svc, repos := setup()

	legacy, err := repos.Store.Create(ctx, kvstore.Users, kvstore.Record{
		"email": "old@test.test", "username": "old", "role": "student", "password": "plaintext",
	})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "old@test.test", "wrong")
	assert.Equal(t, user.ErrInvalidCredentials, err)

	usr, err := svc.SignIn(ctx, "old@test.test", "plaintext")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID(), usr.ID)
	assert.False(t, usr.HasLegacyPassword())

	recs, err := repos.Store.List(ctx, kvstore.Users)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotContains(t, recs[0], "password")
	assert.NotEmpty(t, recs[0].String("password_hash"))

	usr, err = svc.SignIn(ctx, "old@test.test", "plaintext")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID(), usr.ID)
}

func TestService_Current(t *testing.T) {
	ctx := context.Background()
	svc, repos := setup()
	alice := testutil.CreateUser(t, repos.Users, "alice@test.test", "alice", pwd, core.RoleStudent)

	_, err := svc.Current(ctx)
	assert.Equal(t, core.ErrNotAuthenticated, err)

	ghost := core.WithIdentity(ctx, core.Identity{UserID: "ghost", Role: core.RoleStudent})
	_, err = svc.Current(ghost)
	assert.Equal(t, user.ErrProfileNotFound, err)

	usr, err := svc.Current(testutil.AsUser(ctx, alice))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, usr.ID)
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, repos := setup()
	alice := testutil.CreateUser(t, repos.Users, "alice@test.test", "alice", pwd, core.RoleStudent)
	testutil.CreateUser(t, repos.Users, "bob@test.test", "bob", pwd, core.RoleStudent)
	asAlice := testutil.AsUser(ctx, alice)

	str := func(s string) *string { return &s }

	_, err := svc.UpdateProfile(ctx, user.UpdateUser{Username: str("x")})
	assert.Equal(t, core.ErrNotAuthenticated, err)

	t.Run("username only", func(t *testing.T) {
		usr, err := svc.UpdateProfile(asAlice, user.UpdateUser{Username: str(" Alice L ")})
		require.NoError(t, err)
		assert.Equal(t, "Alice L", usr.Username)
		assert.Equal(t, "alice@test.test", usr.Email)
		assert.Equal(t, alice.CreatedAt.Unix(), usr.CreatedAt.Unix())
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := svc.UpdateProfile(asAlice, user.UpdateUser{Email: str("BOB@test.test")})
		assert.Equal(t, user.ErrDuplicateUser, err)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.UpdateProfile(asAlice, user.UpdateUser{Email: str("bob")})
		var vErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &vErrs)
	})

	t.Run("password", func(t *testing.T) {
		_, err := svc.UpdateProfile(asAlice, user.UpdateUser{Password: str("n3w-secret")})
		require.NoError(t, err)

		_, err = svc.SignIn(ctx, "alice@test.test", pwd)
		assert.Equal(t, user.ErrInvalidCredentials, err)
		usr, err := svc.SignIn(ctx, "alice@test.test", "n3w-secret")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, usr.ID)
	})

	t.Run("nothing to change", func(t *testing.T) {
		usr, err := svc.UpdateProfile(asAlice, user.UpdateUser{})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, usr.ID)
	})
}

package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tracked-edu/tracked/core/user"
)

var userColumns = []string{"id", "email", "username", "role", "password_hash", "created_at"}

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	usr.CreatedAt = now()

	q := psql.Insert("profiles").
		Columns(userColumns...).
		Values(usr.ID, usr.Email, usr.Username, usr.Role, usr.PasswordHash, usr.CreatedAt)
	if err := exec(ctx, repo.db, q, "create user"); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrDuplicateUser
		}
		return user.User{}, err
	}
	usr.LegacyPassword = ""
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getBy(ctx, sq.Expr("lower(email) = lower(?)", email))
}

func (repo *userRepository) UpdateUser(ctx context.Context, id string, changes user.Changes) (user.User, error) {
	if changes.IsEmpty() {
		return repo.GetUserByID(ctx, id)
	}

	q := psql.Update("profiles").Where(sq.Eq{"id": id})
	if changes.Email != nil {
		q = q.Set("email", *changes.Email)
	}
	if changes.Username != nil {
		q = q.Set("username", *changes.Username)
	}
	if changes.PasswordHash != nil {
		q = q.Set("password_hash", changes.PasswordHash)
	}
	q = q.Suffix("RETURNING " + joinColumns(userColumns))

	var row userRow
	if err := get(ctx, repo.db, &row, q, "update user"); err != nil {
		switch {
		case err == errNoRows:
			return user.User{}, user.ErrNotFound
		case isUniqueViolation(err):
			return user.User{}, user.ErrDuplicateUser
		}
		return user.User{}, err
	}
	return row.user(), nil
}

func (repo *userRepository) getBy(ctx context.Context, pred sq.Sqlizer) (user.User, error) {
	var row userRow
	q := psql.Select(userColumns...).From("profiles").Where(pred).Limit(1)
	if err := get(ctx, repo.db, &row, q, "get user"); err != nil {
		if err == errNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.user(), nil
}

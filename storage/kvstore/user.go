package kvstore

import (
	"context"
	"strings"

	"github.com/tracked-edu/tracked/core/user"
)

type userRepository struct {
	store *Store
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(store *Store) user.Repository {
	return &userRepository{store: store}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	rec, err := repo.store.CreateUnique(ctx, Users, "email", usr.Email, UserRecord(usr))
	if err == ErrDuplicate {
		return user.User{}, user.ErrDuplicateUser
	}
	if err != nil {
		return user.User{}, err
	}
	return RecordToUser(rec), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.find(ctx, func(rec Record) bool { return rec.ID() == id })
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.find(ctx, func(rec Record) bool { return strings.EqualFold(rec.String("email"), email) })
}

func (repo *userRepository) UpdateUser(ctx context.Context, id string, changes user.Changes) (user.User, error) {
	partial := make(Record)
	if changes.Email != nil {
		partial["email"] = *changes.Email
	}
	if changes.Username != nil {
		partial["username"] = *changes.Username
	}
	if changes.PasswordHash != nil {
		partial["password_hash"] = string(changes.PasswordHash)
		partial["password"] = nil // drop any legacy plaintext credential
	}

	rec, found, err := repo.store.Update(ctx, Users, id, partial)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}
	return RecordToUser(rec), nil
}

func (repo *userRepository) find(ctx context.Context, match func(Record) bool) (user.User, error) {
	recs, err := repo.store.List(ctx, Users)
	if err != nil {
		return user.User{}, err
	}
	for _, rec := range recs {
		if match(rec) {
			return RecordToUser(rec), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

// UserRecord converts usr to its stored form, without id and timestamp.
func UserRecord(usr user.User) Record {
	rec := Record{
		"email":    usr.Email,
		"username": usr.Username,
		"role":     usr.Role,
	}
	if len(usr.PasswordHash) > 0 {
		rec["password_hash"] = string(usr.PasswordHash)
	}
	return rec
}

func RecordToUser(rec Record) user.User {
	usr := user.User{
		ID:             rec.ID(),
		Email:          rec.String("email"),
		Username:       rec.String("username"),
		Role:           rec.String("role"),
		CreatedAt:      rec.Time("created_at"),
		LegacyPassword: rec.String("password"),
	}
	if hash := rec.String("password_hash"); hash != "" {
		usr.PasswordHash = []byte(hash)
	}
	return usr
}

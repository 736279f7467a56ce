package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateUser      = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProfileNotFound    = errors.New("profile not found")
)

type (
	Repository interface {
		// CreateUser returns ErrDuplicateUser when the email is already taken, if the backend can tell.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, id string, changes Changes) (User, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// SignUp registers a new user. Emails are unique (case-insensitive).
func (svc *Service) SignUp(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}
	if err := svc.checkEmailUniqueness(ctx, nu.Email, ""); err != nil {
		return User{}, err
	}

	usr := User{
		Email:     nu.Email,
		Username:  nu.Username,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// SignIn returns the user matching both email and password.
// Plaintext legacy credentials are upgraded to a hash on success.
func (svc *Service) SignIn(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}

	if usr.HasLegacyPassword() {
		if err := usr.SetPassword(pwd); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
		return svc.repo.UpdateUser(ctx, usr.ID, Changes{PasswordHash: usr.PasswordHash})
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

// Current returns the profile of the signed-in user.
func (svc *Service) Current(ctx context.Context) (User, error) {
	id, err := core.RequireIdentity(ctx)
	if err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUserByID(ctx, id.UserID)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrProfileNotFound
	}
	return usr, err
}

// UpdateProfile applies uu to the signed-in user.
func (svc *Service) UpdateProfile(ctx context.Context, uu UpdateUser) (User, error) {
	usr, err := svc.Current(ctx)
	if err != nil {
		return User{}, err
	}
	if err := uu.Validate(usr, svc.validate); err != nil {
		return User{}, err
	}

	var changes Changes
	if uu.Email != nil && *uu.Email != usr.Email {
		if err := svc.checkEmailUniqueness(ctx, *uu.Email, usr.ID); err != nil {
			return User{}, err
		}
		changes.Email = uu.Email
	}
	if uu.Username != nil && *uu.Username != usr.Username {
		changes.Username = uu.Username
	}
	if uu.Password != nil {
		if err := usr.SetPassword(*uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
		changes.PasswordHash = usr.PasswordHash
	}
	if changes.IsEmpty() {
		return usr, nil
	}
	return svc.repo.UpdateUser(ctx, usr.ID, changes)
}

func (svc *Service) checkEmailUniqueness(ctx context.Context, email, excludedID string) error {
	existing, err := svc.repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != excludedID:
		return ErrDuplicateUser
	}
	return nil
}

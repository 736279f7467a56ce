package user

import (
	"crypto/subtle"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/tracked-edu/tracked/core"
)

var Roles = []Role{
	{Name: "Student", Value: core.RoleStudent},
	{Name: "Teacher", Value: core.RoleTeacher},
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC

	// LegacyPassword holds a plaintext credential found on records written by older clients.
	// It is replaced by PasswordHash on the next successful sign in.
	LegacyPassword string `json:"-"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.LegacyPassword = ""
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	if len(u.PasswordHash) == 0 && u.LegacyPassword != "" {
		if subtle.ConstantTimeCompare([]byte(u.LegacyPassword), []byte(pwd)) == 1 {
			return nil
		}
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// HasLegacyPassword reports whether the credential still needs to be upgraded to a hash.
func (u *User) HasLegacyPassword() bool {
	return len(u.PasswordHash) == 0 && u.LegacyPassword != ""
}

func (u *User) IsTeacher() bool {
	return u.Role == core.RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == core.RoleStudent
}

func (u *User) Identity() core.Identity {
	return core.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,notblank,max=50"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Username = core.CleanString(nu.Username)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Nil fields are left unchanged.
type UpdateUser struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,notblank,max=50"`
	Password *string `json:"password"`

	// attributes of the edited user, used by the password policy
	current User
}

func (uu *UpdateUser) IsEmpty() bool {
	return uu.Email == nil && uu.Username == nil && uu.Password == nil
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate) error {
	uu.Email = core.CleanStringPtr(uu.Email, true /* lower */)
	uu.Username = core.CleanStringPtr(uu.Username)
	if uu.Password != nil && *uu.Password == "" {
		uu.Password = nil
	}
	uu.current = origUsr
	return validate.Struct(uu)
}

// Changes is the closed set of user fields a repository may update.
type Changes struct {
	Email        *string
	Username     *string
	PasswordHash []byte
}

func (ch Changes) IsEmpty() bool {
	return ch.Email == nil && ch.Username == nil && ch.PasswordHash == nil
}

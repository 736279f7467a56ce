package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/reminder"
	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/user"
	"github.com/tracked-edu/tracked/storage/kvstore"
)

type Repos struct {
	Store     *kvstore.Store
	Users     user.Repository
	Modules   module.Repository
	Sessions  session.Repository
	Reminders reminder.Repository
}

// NewRepos returns repositories over a fresh in-memory store.
func NewRepos(opts ...kvstore.Option) Repos {
	store := kvstore.New(kvstore.NewMemoryBlobs(), opts...)
	return Repos{
		Store:     store,
		Users:     kvstore.NewUserRepository(store),
		Modules:   kvstore.NewModuleRepository(store),
		Sessions:  kvstore.NewSessionRepository(store),
		Reminders: kvstore.NewReminderRepository(store),
	}
}

// NewValidator returns a validator with every custom validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// AsUser returns a context acting as usr.
func AsUser(ctx context.Context, usr user.User) context.Context {
	return core.WithIdentity(ctx, usr.Identity())
}

func CreateUser(t *testing.T, repo user.Repository, email, uname, pwd, role string) user.User {
	usr := user.User{
		Email:     email,
		Username:  uname,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateModule(t *testing.T, repo module.Repository, teacherID, title string) module.Module {
	mod, err := repo.CreateModule(context.Background(), module.Module{
		Title:       title,
		Description: title + " description",
		Content:     title + " content",
		TeacherID:   teacherID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}

func CreateSession(t *testing.T, repo session.Repository, studentID, moduleID string, duration int) session.StudySession {
	sess, err := repo.CreateSession(context.Background(), session.StudySession{
		StudentID: studentID,
		ModuleID:  moduleID,
		Duration:  duration,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}

func CreateReminder(t *testing.T, repo reminder.Repository, studentID string, mod module.Module, completed bool) reminder.Reminder {
	rem, err := repo.CreateReminder(context.Background(), reminder.Reminder{
		StudentID:     studentID,
		ModuleID:      mod.ID,
		ModuleTitle:   mod.Title,
		ScheduledTime: time.Now().Add(24 * time.Hour).UTC(),
		Completed:     completed,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateReminder() failed: %v", err)
	}
	return rem
}

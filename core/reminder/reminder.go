package reminder

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
)

var (
	// errors
	ErrNotFound = errors.New("reminder not found")
)

// Reminder is a review prompt a student scheduled for a module.
// ModuleTitle is copied at creation and not kept in sync with later renames.
type Reminder struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	ModuleID      string    `json:"module_id"`
	ModuleTitle   string    `json:"module_title"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NewReminder contains information needed to schedule a Reminder.
type NewReminder struct {
	ModuleID      string    `json:"module_id" validate:"required"`
	ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
}

// DigestTemplate is the email template listing pending reminders.
const DigestTemplate = "reminders"

// DigestData is the data of DigestTemplate.
type DigestData struct {
	Email     string
	Reminders []Reminder
}

type QueryFilter struct {
	StudentID string
	Completed *bool
}

type (
	Repository interface {
		CreateReminder(ctx context.Context, rem Reminder) (Reminder, error)
		// QueryReminders returns the reminders matching filter, most recently created first.
		QueryReminders(ctx context.Context, filter QueryFilter) ([]Reminder, error)
		GetReminderByID(ctx context.Context, id string) (Reminder, error)
		// DeleteReminder is a no-op when the reminder does not exist.
		DeleteReminder(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		modules  module.Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, modules module.Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, modules: modules, validate: validate}
}

// Schedule creates a reminder of the signed-in student. The scheduled time is taken as-is.
func (svc *Service) Schedule(ctx context.Context, nr NewReminder) (Reminder, error) {
	id, err := core.RequireRole(ctx, core.RoleStudent)
	if err != nil {
		return Reminder{}, err
	}
	nr.ModuleID = core.CleanString(nr.ModuleID)
	if err := svc.validate.Struct(nr); err != nil {
		return Reminder{}, err
	}
	mod, err := svc.modules.GetModuleByID(ctx, nr.ModuleID)
	if err != nil {
		return Reminder{}, err
	}
	return svc.repo.CreateReminder(ctx, Reminder{
		StudentID:     id.UserID,
		ModuleID:      mod.ID,
		ModuleTitle:   mod.Title,
		ScheduledTime: nr.ScheduledTime.UTC(),
		CreatedAt:     time.Now().UTC(),
	})
}

// Pending returns the incomplete reminders of a student, most recently created first.
func (svc *Service) Pending(ctx context.Context, studentID string) ([]Reminder, error) {
	completed := false
	return svc.repo.QueryReminders(ctx, QueryFilter{StudentID: studentID, Completed: &completed})
}

// MyPending is Pending for the signed-in user.
func (svc *Service) MyPending(ctx context.Context) ([]Reminder, error) {
	id, err := core.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Pending(ctx, id.UserID)
}

// Delete permanently removes a reminder of the signed-in student.
// Deleting an absent reminder is a no-op.
func (svc *Service) Delete(ctx context.Context, id string) error {
	ident, err := core.RequireIdentity(ctx)
	if err != nil {
		return err
	}
	rem, err := svc.repo.GetReminderByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rem.StudentID != ident.UserID {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteReminder(ctx, id)
}

// SendDigest emails the signed-in student the list of their pending reminders.
// Nothing is sent when there are none. It returns the number of reminders listed.
func (svc *Service) SendDigest(ctx context.Context, mailer core.EmailService) (int, error) {
	id, err := core.RequireRole(ctx, core.RoleStudent)
	if err != nil {
		return 0, err
	}
	rems, err := svc.Pending(ctx, id.UserID)
	if err != nil {
		return 0, err
	}
	if len(rems) == 0 {
		return 0, nil
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: id.Email}},
		Subject:      "Your upcoming reviews",
		TemplateName: DigestTemplate,
		TemplateData: DigestData{Email: id.Email, Reminders: rems},
	}
	if err := mailer.Send(ctx, msg); err != nil {
		return 0, errors.Wrap(err, "sending reminder digest")
	}
	return len(rems), nil
}

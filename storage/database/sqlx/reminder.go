package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tracked-edu/tracked/core/reminder"
)

var reminderColumns = []string{"id", "student_id", "module_id", "module_title", "scheduled_time", "completed", "created_at"}

type reminderRow struct {
	ID            string    `db:"id"`
	StudentID     string    `db:"student_id"`
	ModuleID      string    `db:"module_id"`
	ModuleTitle   string    `db:"module_title"`
	ScheduledTime time.Time `db:"scheduled_time"`
	Completed     bool      `db:"completed"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r reminderRow) reminder() reminder.Reminder {
	return reminder.Reminder{
		ID:            r.ID,
		StudentID:     r.StudentID,
		ModuleID:      r.ModuleID,
		ModuleTitle:   r.ModuleTitle,
		ScheduledTime: r.ScheduledTime.UTC(),
		Completed:     r.Completed,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

type reminderRepository struct {
	db *sqlx.DB
}

var _ reminder.Repository = (*reminderRepository)(nil)

func NewReminderRepository(db *sqlx.DB) reminder.Repository {
	return &reminderRepository{db: db}
}

func (repo *reminderRepository) CreateReminder(ctx context.Context, rem reminder.Reminder) (reminder.Reminder, error) {
	rem.ID = uuid.NewString()
	rem.CreatedAt = now()
	rem.ScheduledTime = rem.ScheduledTime.UTC().Truncate(time.Microsecond)

	q := psql.Insert("reminders").
		Columns(reminderColumns...).
		Values(rem.ID, rem.StudentID, rem.ModuleID, rem.ModuleTitle, rem.ScheduledTime, rem.Completed, rem.CreatedAt)
	if err := exec(ctx, repo.db, q, "create reminder"); err != nil {
		return reminder.Reminder{}, err
	}
	return rem, nil
}

func (repo *reminderRepository) QueryReminders(ctx context.Context, filter reminder.QueryFilter) ([]reminder.Reminder, error) {
	q := psql.Select(reminderColumns...).From("reminders").OrderBy("created_at DESC")
	if filter.StudentID != "" {
		q = q.Where(sq.Eq{"student_id": filter.StudentID})
	}
	if filter.Completed != nil {
		q = q.Where(sq.Eq{"completed": *filter.Completed})
	}

	var rows []reminderRow
	if err := selectAll(ctx, repo.db, &rows, q, "query reminders"); err != nil {
		return nil, err
	}
	rems := make([]reminder.Reminder, 0, len(rows))
	for _, row := range rows {
		rems = append(rems, row.reminder())
	}
	return rems, nil
}

func (repo *reminderRepository) GetReminderByID(ctx context.Context, id string) (reminder.Reminder, error) {
	var row reminderRow
	q := psql.Select(reminderColumns...).From("reminders").Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &row, q, "get reminder"); err != nil {
		if err == errNoRows {
			return reminder.Reminder{}, reminder.ErrNotFound
		}
		return reminder.Reminder{}, err
	}
	return row.reminder(), nil
}

func (repo *reminderRepository) DeleteReminder(ctx context.Context, id string) error {
	return exec(ctx, repo.db, psql.Delete("reminders").Where(sq.Eq{"id": id}), "delete reminder")
}

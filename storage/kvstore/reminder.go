package kvstore

import (
	"context"

	"github.com/tracked-edu/tracked/core/reminder"
)

type reminderRepository struct {
	store *Store
}

var _ reminder.Repository = (*reminderRepository)(nil)

func NewReminderRepository(store *Store) reminder.Repository {
	return &reminderRepository{store: store}
}

func (repo *reminderRepository) CreateReminder(ctx context.Context, rem reminder.Reminder) (reminder.Reminder, error) {
	rec, err := repo.store.Create(ctx, Reminders, Record{
		"student_id":     rem.StudentID,
		"module_id":      rem.ModuleID,
		"module_title":   rem.ModuleTitle,
		"scheduled_time": FormatTime(rem.ScheduledTime),
		"completed":      rem.Completed,
	})
	if err != nil {
		return reminder.Reminder{}, err
	}
	return recordToReminder(rec), nil
}

func (repo *reminderRepository) QueryReminders(ctx context.Context, filter reminder.QueryFilter) ([]reminder.Reminder, error) {
	recs, err := repo.store.List(ctx, Reminders)
	if err != nil {
		return nil, err
	}
	rems := make([]reminder.Reminder, 0, len(recs))
	for _, rec := range recs {
		rem := recordToReminder(rec)
		if filter.StudentID != "" && rem.StudentID != filter.StudentID {
			continue
		}
		if filter.Completed != nil && rem.Completed != *filter.Completed {
			continue
		}
		rems = append(rems, rem)
	}
	return rems, nil
}

func (repo *reminderRepository) GetReminderByID(ctx context.Context, id string) (reminder.Reminder, error) {
	recs, err := repo.store.List(ctx, Reminders)
	if err != nil {
		return reminder.Reminder{}, err
	}
	for _, rec := range recs {
		if rec.ID() == id {
			return recordToReminder(rec), nil
		}
	}
	return reminder.Reminder{}, reminder.ErrNotFound
}

func (repo *reminderRepository) DeleteReminder(ctx context.Context, id string) error {
	return repo.store.Delete(ctx, Reminders, id)
}

func recordToReminder(rec Record) reminder.Reminder {
	return reminder.Reminder{
		ID:            rec.ID(),
		StudentID:     rec.String("student_id"),
		ModuleID:      rec.String("module_id"),
		ModuleTitle:   rec.String("module_title"),
		ScheduledTime: rec.Time("scheduled_time"),
		Completed:     rec.Bool("completed"),
		CreatedAt:     rec.Time("created_at"),
	}
}

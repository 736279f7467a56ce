package kvstore

import (
	"context"

	"github.com/tracked-edu/tracked/core/session"
)

type sessionRepository struct {
	store *Store
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(store *Store) session.Repository {
	return &sessionRepository{store: store}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess session.StudySession) (session.StudySession, error) {
	rec, err := repo.store.Create(ctx, Sessions, Record{
		"student_id": sess.StudentID,
		"module_id":  sess.ModuleID,
		"duration":   sess.Duration,
	})
	if err != nil {
		return session.StudySession{}, err
	}
	return recordToSession(rec), nil
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.StudySession, error) {
	recs, err := repo.store.List(ctx, Sessions)
	if err != nil {
		return nil, err
	}

	var moduleIDs map[string]bool
	if len(filter.ModuleIDs) > 0 {
		moduleIDs = make(map[string]bool, len(filter.ModuleIDs))
		for _, id := range filter.ModuleIDs {
			moduleIDs[id] = true
		}
	}

	sessions := make([]session.StudySession, 0, len(recs))
	for _, rec := range recs {
		sess := recordToSession(rec)
		if filter.StudentID != "" && sess.StudentID != filter.StudentID {
			continue
		}
		if moduleIDs != nil && !moduleIDs[sess.ModuleID] {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func recordToSession(rec Record) session.StudySession {
	return session.StudySession{
		ID:        rec.ID(),
		StudentID: rec.String("student_id"),
		ModuleID:  rec.String("module_id"),
		Duration:  rec.Int("duration"),
		Timestamp: rec.Time("timestamp"),
	}
}

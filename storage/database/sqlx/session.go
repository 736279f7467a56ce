package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tracked-edu/tracked/core/session"
)

var sessionColumns = []string{"id", "student_id", "module_id", "duration", "timestamp"}

type sessionRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	ModuleID  string    `db:"module_id"`
	Duration  int       `db:"duration"`
	Timestamp time.Time `db:"timestamp"`
}

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *sqlx.DB) session.Repository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess session.StudySession) (session.StudySession, error) {
	sess.ID = uuid.NewString()
	sess.Timestamp = now()

	q := psql.Insert("sessions").
		Columns(sessionColumns...).
		Values(sess.ID, sess.StudentID, sess.ModuleID, sess.Duration, sess.Timestamp)
	if err := exec(ctx, repo.db, q, "create session"); err != nil {
		return session.StudySession{}, err
	}
	return sess, nil
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.StudySession, error) {
	q := psql.Select(sessionColumns...).From("sessions").OrderBy(`"timestamp" DESC`)
	if filter.StudentID != "" {
		q = q.Where(sq.Eq{"student_id": filter.StudentID})
	}
	if len(filter.ModuleIDs) > 0 {
		q = q.Where(sq.Eq{"module_id": filter.ModuleIDs})
	}

	var rows []sessionRow
	if err := selectAll(ctx, repo.db, &rows, q, "query sessions"); err != nil {
		return nil, err
	}
	sessions := make([]session.StudySession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, session.StudySession{
			ID:        row.ID,
			StudentID: row.StudentID,
			ModuleID:  row.ModuleID,
			Duration:  row.Duration,
			Timestamp: row.Timestamp.UTC(),
		})
	}
	return sessions, nil
}

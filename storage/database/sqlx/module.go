package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tracked-edu/tracked/core/module"
)

var moduleColumns = []string{"id", "title", "description", "content", "teacher_id", "created_at"}

type moduleRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Content     string    `db:"content"`
	TeacherID   string    `db:"teacher_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r moduleRow) module() module.Module {
	return module.Module{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		TeacherID:   r.TeacherID,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type moduleRepository struct {
	db *sqlx.DB
}

var _ module.Repository = (*moduleRepository)(nil)

func NewModuleRepository(db *sqlx.DB) module.Repository {
	return &moduleRepository{db: db}
}

func (repo *moduleRepository) CreateModule(ctx context.Context, mod module.Module) (module.Module, error) {
	mod.ID = uuid.NewString()
	mod.CreatedAt = now()

	q := psql.Insert("modules").
		Columns(moduleColumns...).
		Values(mod.ID, mod.Title, mod.Description, mod.Content, mod.TeacherID, mod.CreatedAt)
	if err := exec(ctx, repo.db, q, "create module"); err != nil {
		return module.Module{}, err
	}
	return mod, nil
}

func (repo *moduleRepository) QueryModules(ctx context.Context, filter module.QueryFilter) ([]module.Module, error) {
	q := psql.Select(moduleColumns...).From("modules").OrderBy("created_at DESC")
	if filter.TeacherID != "" {
		q = q.Where(sq.Eq{"teacher_id": filter.TeacherID})
	}
	if filter.Search != "" {
		q = q.Where(sq.ILike{"title": containsPattern(filter.Search)})
	}

	var rows []moduleRow
	if err := selectAll(ctx, repo.db, &rows, q, "query modules"); err != nil {
		return nil, err
	}
	mods := make([]module.Module, 0, len(rows))
	for _, row := range rows {
		mods = append(mods, row.module())
	}
	return mods, nil
}

func (repo *moduleRepository) GetModuleByID(ctx context.Context, id string) (module.Module, error) {
	var row moduleRow
	q := psql.Select(moduleColumns...).From("modules").Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &row, q, "get module"); err != nil {
		if err == errNoRows {
			return module.Module{}, module.ErrNotFound
		}
		return module.Module{}, err
	}
	return row.module(), nil
}

func (repo *moduleRepository) UpdateModule(ctx context.Context, id string, changes module.Changes) (module.Module, error) {
	if changes.IsEmpty() {
		return repo.GetModuleByID(ctx, id)
	}

	q := psql.Update("modules").Where(sq.Eq{"id": id})
	if changes.Title != nil {
		q = q.Set("title", *changes.Title)
	}
	if changes.Description != nil {
		q = q.Set("description", *changes.Description)
	}
	if changes.Content != nil {
		q = q.Set("content", *changes.Content)
	}
	q = q.Suffix("RETURNING " + joinColumns(moduleColumns))

	var row moduleRow
	if err := get(ctx, repo.db, &row, q, "update module"); err != nil {
		if err == errNoRows {
			return module.Module{}, module.ErrNotFound
		}
		return module.Module{}, err
	}
	return row.module(), nil
}

func (repo *moduleRepository) DeleteModule(ctx context.Context, id string) error {
	return exec(ctx, repo.db, psql.Delete("modules").Where(sq.Eq{"id": id}), "delete module")
}

package kvstore

import (
	"context"
	"strings"

	"github.com/tracked-edu/tracked/core/module"
)

type moduleRepository struct {
	store *Store
}

var _ module.Repository = (*moduleRepository)(nil)

func NewModuleRepository(store *Store) module.Repository {
	return &moduleRepository{store: store}
}

func (repo *moduleRepository) CreateModule(ctx context.Context, mod module.Module) (module.Module, error) {
	rec, err := repo.store.Create(ctx, Modules, Record{
		"title":       mod.Title,
		"description": mod.Description,
		"content":     mod.Content,
		"teacher_id":  mod.TeacherID,
	})
	if err != nil {
		return module.Module{}, err
	}
	return recordToModule(rec), nil
}

func (repo *moduleRepository) QueryModules(ctx context.Context, filter module.QueryFilter) ([]module.Module, error) {
	recs, err := repo.store.List(ctx, Modules)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(filter.Search)
	mods := make([]module.Module, 0, len(recs))
	for _, rec := range recs {
		mod := recordToModule(rec)
		if filter.TeacherID != "" && mod.TeacherID != filter.TeacherID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(mod.Title), search) {
			continue
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func (repo *moduleRepository) GetModuleByID(ctx context.Context, id string) (module.Module, error) {
	recs, err := repo.store.List(ctx, Modules)
	if err != nil {
		return module.Module{}, err
	}
	for _, rec := range recs {
		if rec.ID() == id {
			return recordToModule(rec), nil
		}
	}
	return module.Module{}, module.ErrNotFound
}

func (repo *moduleRepository) UpdateModule(ctx context.Context, id string, changes module.Changes) (module.Module, error) {
	partial := make(Record)
	if changes.Title != nil {
		partial["title"] = *changes.Title
	}
	if changes.Description != nil {
		partial["description"] = *changes.Description
	}
	if changes.Content != nil {
		partial["content"] = *changes.Content
	}

	rec, found, err := repo.store.Update(ctx, Modules, id, partial)
	if err != nil {
		return module.Module{}, err
	}
	if !found {
		return module.Module{}, module.ErrNotFound
	}
	return recordToModule(rec), nil
}

func (repo *moduleRepository) DeleteModule(ctx context.Context, id string) error {
	return repo.store.Delete(ctx, Modules, id)
}

func recordToModule(rec Record) module.Module {
	return module.Module{
		ID:          rec.ID(),
		Title:       rec.String("title"),
		Description: rec.String("description"),
		Content:     rec.String("content"),
		TeacherID:   rec.String("teacher_id"),
		CreatedAt:   rec.Time("created_at"),
	}
}

package module

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
)

var (
	// errors
	ErrNotFound = errors.New("module not found")
)

type (
	Repository interface {
		CreateModule(ctx context.Context, mod Module) (Module, error)
		// QueryModules returns the modules matching filter, newest first.
		QueryModules(ctx context.Context, filter QueryFilter) ([]Module, error)
		GetModuleByID(ctx context.Context, id string) (Module, error)
		UpdateModule(ctx context.Context, id string, changes Changes) (Module, error)
		// DeleteModule is a no-op when the module does not exist.
		DeleteModule(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Create publishes a module owned by the signed-in teacher.
func (svc *Service) Create(ctx context.Context, nm NewModule) (Module, error) {
	id, err := core.RequireRole(ctx, core.RoleTeacher)
	if err != nil {
		return Module{}, err
	}
	if err := nm.Validate(svc.validate); err != nil {
		return Module{}, err
	}
	return svc.repo.CreateModule(ctx, Module{
		Title:       nm.Title,
		Description: nm.Description,
		Content:     nm.Content,
		TeacherID:   id.UserID,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Module, error) {
	filter.Clean()
	return svc.repo.QueryModules(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Module, error) {
	return svc.repo.GetModuleByID(ctx, id)
}

// Update edits a module of the signed-in teacher.
func (svc *Service) Update(ctx context.Context, id string, um UpdateModule) (Module, error) {
	mod, err := svc.getOwned(ctx, id)
	if err != nil {
		return Module{}, err
	}
	if err := um.Validate(svc.validate); err != nil {
		return Module{}, err
	}
	changes := um.Changes()
	if changes.IsEmpty() {
		return mod, nil
	}
	return svc.repo.UpdateModule(ctx, id, changes)
}

// Delete removes a module of the signed-in teacher.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.getOwned(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteModule(ctx, id)
}

// Export returns the download file name and plain text body of a module.
func (svc *Service) Export(ctx context.Context, id string) (string, string, error) {
	mod, err := svc.repo.GetModuleByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return ExportFilename(mod.Title), ExportText(mod), nil
}

func (svc *Service) getOwned(ctx context.Context, id string) (Module, error) {
	ident, err := core.RequireRole(ctx, core.RoleTeacher)
	if err != nil {
		return Module{}, err
	}
	mod, err := svc.repo.GetModuleByID(ctx, id)
	if err != nil {
		return Module{}, err
	}
	if mod.TeacherID != ident.UserID {
		return Module{}, core.ErrPermissionDenied
	}
	return mod, nil
}

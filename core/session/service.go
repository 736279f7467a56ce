package session

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
)

var (
	// errors
	ErrSessionTooShort  = errors.Errorf("study sessions must last more than %d seconds", MinSeconds)
	ErrNoModuleSelected = errors.New("select a module before starting the timer")
	ErrInvalidDuration  = errors.New("invalid timer duration")
	ErrTimerBusy        = errors.New("the timer is already running")
	ErrTimerIdle        = errors.New("the timer is not running")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess StudySession) (StudySession, error)
		// QuerySessions returns the sessions matching filter, most recent first.
		QuerySessions(ctx context.Context, filter QueryFilter) ([]StudySession, error)
	}

	// Recorder persists completed timer runs.
	Recorder interface {
		Record(ctx context.Context, moduleID string, seconds int) (StudySession, error)
	}

	Service struct {
		repo     Repository
		modules  module.Repository
		validate *validator.Validate
	}
)

var _ Recorder = (*Service)(nil)

func NewService(repo Repository, modules module.Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, modules: modules, validate: validate}
}

// Record persists a run of the signed-in student on moduleID.
// Runs of MinSeconds or less are rejected with ErrSessionTooShort.
func (svc *Service) Record(ctx context.Context, moduleID string, seconds int) (StudySession, error) {
	id, err := core.RequireRole(ctx, core.RoleStudent)
	if err != nil {
		return StudySession{}, err
	}
	if seconds <= MinSeconds {
		return StudySession{}, ErrSessionTooShort
	}
	if _, err := svc.modules.GetModuleByID(ctx, moduleID); err != nil {
		return StudySession{}, err
	}
	return svc.repo.CreateSession(ctx, StudySession{
		StudentID: id.UserID,
		ModuleID:  moduleID,
		Duration:  seconds,
		Timestamp: time.Now().UTC(),
	})
}

// Create validates and records a run reported by a client.
func (svc *Service) Create(ctx context.Context, ns NewSession) (StudySession, error) {
	ns.ModuleID = core.CleanString(ns.ModuleID)
	if err := svc.validate.Struct(ns); err != nil {
		return StudySession{}, err
	}
	return svc.Record(ctx, ns.ModuleID, ns.Duration)
}

// History returns the sessions of a student, most recent first.
func (svc *Service) History(ctx context.Context, studentID string) ([]StudySession, error) {
	return svc.repo.QuerySessions(ctx, QueryFilter{StudentID: studentID})
}

// MyHistory is History for the signed-in user.
func (svc *Service) MyHistory(ctx context.Context) ([]StudySession, error) {
	id, err := core.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return svc.History(ctx, id.UserID)
}

// Package metrics derives dashboard statistics from the stored sessions and modules.
// Nothing is cached: every call reads the repositories again.
package metrics

import (
	"context"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/user"
)

const (
	// RecentLimit is the number of recent sessions or modules listed with the metrics.
	RecentLimit = 5

	UnknownModuleTitle = "Unknown Module"
)

type (
	RecentSession struct {
		session.StudySession
		ModuleTitle string `json:"module_title"`
	}

	StudentMetrics struct {
		TotalSeconds   int             `json:"total_seconds"`
		TotalMinutes   int             `json:"total_minutes"`
		ModulesStudied int             `json:"modules_studied"`
		Recent         []RecentSession `json:"recent_sessions"`
	}

	TeacherMetrics struct {
		ModulesPublished int             `json:"modules_published"`
		TotalViews       int             `json:"total_views"`
		Recent           []module.Module `json:"recent_modules"`
	}

	// Metrics holds the statistics matching the role of a user.
	Metrics struct {
		Role    string          `json:"role"`
		Student *StudentMetrics `json:"student,omitempty"`
		Teacher *TeacherMetrics `json:"teacher,omitempty"`
	}

	Service struct {
		sessions session.Repository
		modules  module.Repository
	}
)

func NewService(sessions session.Repository, modules module.Repository) *Service {
	return &Service{sessions: sessions, modules: modules}
}

// Student computes the focus time and module count of a student.
func (svc *Service) Student(ctx context.Context, studentID string) (StudentMetrics, error) {
	sessions, err := svc.sessions.QuerySessions(ctx, session.QueryFilter{StudentID: studentID})
	if err != nil {
		return StudentMetrics{}, err
	}

	var m StudentMetrics
	studied := make(map[string]struct{})
	for _, sess := range sessions {
		m.TotalSeconds += sess.Duration
		studied[sess.ModuleID] = struct{}{}
	}
	m.TotalMinutes = m.TotalSeconds / 60
	m.ModulesStudied = len(studied)

	recent := sessions
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	m.Recent = make([]RecentSession, 0, len(recent))
	if len(recent) == 0 {
		return m, nil
	}

	mods, err := svc.modules.QueryModules(ctx, module.QueryFilter{})
	if err != nil {
		return StudentMetrics{}, err
	}
	titles := make(map[string]string, len(mods))
	for _, mod := range mods {
		titles[mod.ID] = mod.Title
	}
	for _, sess := range recent {
		title, ok := titles[sess.ModuleID]
		if !ok {
			title = UnknownModuleTitle
		}
		m.Recent = append(m.Recent, RecentSession{StudySession: sess, ModuleTitle: title})
	}
	return m, nil
}

// Teacher computes the publishing stats of a teacher.
// Every session, by any student, on one of the teacher's modules counts as a view.
func (svc *Service) Teacher(ctx context.Context, teacherID string) (TeacherMetrics, error) {
	mods, err := svc.modules.QueryModules(ctx, module.QueryFilter{TeacherID: teacherID})
	if err != nil {
		return TeacherMetrics{}, err
	}

	m := TeacherMetrics{ModulesPublished: len(mods)}
	if len(mods) == 0 {
		m.Recent = []module.Module{}
		return m, nil
	}

	ids := make([]string, 0, len(mods))
	for _, mod := range mods {
		ids = append(ids, mod.ID)
	}
	sessions, err := svc.sessions.QuerySessions(ctx, session.QueryFilter{ModuleIDs: ids})
	if err != nil {
		return TeacherMetrics{}, err
	}
	m.TotalViews = len(sessions)

	m.Recent = mods
	if len(m.Recent) > RecentLimit {
		m.Recent = m.Recent[:RecentLimit]
	}
	return m, nil
}

// Profile computes the metrics matching the role of usr.
func (svc *Service) Profile(ctx context.Context, usr user.User) (Metrics, error) {
	res := Metrics{Role: usr.Role}
	switch usr.Role {
	case core.RoleTeacher:
		m, err := svc.Teacher(ctx, usr.ID)
		if err != nil {
			return Metrics{}, err
		}
		res.Teacher = &m
	default:
		m, err := svc.Student(ctx, usr.ID)
		if err != nil {
			return Metrics{}, err
		}
		res.Student = &m
	}
	return res, nil
}

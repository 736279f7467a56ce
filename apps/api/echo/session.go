package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/session"
)

func (s *Server) registerSessionAPI(g *echo.Group, jwt []echo.MiddlewareFunc) {
	sg := g.Group("/sessions", withRole(jwt, core.RoleStudent)...)
	sg.GET("", s.querySessions)
	sg.POST("", s.createSession)
}

func (s *Server) querySessions(ctx echo.Context) error {
	sessions, err := s.SessionSvc.MyHistory(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []session.StudySession{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (s *Server) createSession(ctx echo.Context) error {
	var data session.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}

	sess, err := s.SessionSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording session")
	}
	s.Monitor.ObserveSession(sess)
	return ctx.JSON(http.StatusCreated, sess)
}

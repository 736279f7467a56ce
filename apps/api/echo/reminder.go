package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/reminder"
)

func (s *Server) registerReminderAPI(g *echo.Group, jwt []echo.MiddlewareFunc) {
	rg := g.Group("/reminders", withRole(jwt, core.RoleStudent)...)
	rg.GET("", s.queryReminders)
	rg.POST("", s.createReminder)
	rg.DELETE("/:id", s.destroyReminder)
	rg.POST("/digest", s.sendReminderDigest)
}

func (s *Server) queryReminders(ctx echo.Context) error {
	rems, err := s.ReminderSvc.MyPending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying reminders")
	}
	if rems == nil {
		rems = []reminder.Reminder{}
	}
	return ctx.JSON(http.StatusOK, rems)
}

func (s *Server) createReminder(ctx echo.Context) error {
	var data reminder.NewReminder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReminder")
	}

	rem, err := s.ReminderSvc.Schedule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "scheduling reminder")
	}
	return ctx.JSON(http.StatusCreated, rem)
}

func (s *Server) destroyReminder(ctx echo.Context) error {
	if err := s.ReminderSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting reminder")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type DigestResponse struct {
	Sent int `json:"sent"`
}

func (s *Server) sendReminderDigest(ctx echo.Context) error {
	n, err := s.ReminderSvc.SendDigest(ctx.Request().Context(), s.Mailer)
	if err != nil {
		return errors.Wrap(err, "sending reminder digest")
	}
	return ctx.JSON(http.StatusOK, DigestResponse{Sent: n})
}

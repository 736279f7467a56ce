package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core/tutor"
)

type TutorResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) registerTutorAPI(g *echo.Group, jwt []echo.MiddlewareFunc) {
	g.POST("/tutor", s.askTutor, jwt...)
}

func (s *Server) askTutor(ctx echo.Context) error {
	var data tutor.Question
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Question")
	}
	if err := s.TutorSvc.Validate(&data); err != nil {
		return err
	}

	reply := s.TutorSvc.Ask(ctx.Request().Context(), data)
	s.Monitor.ObserveTutorReply(reply)
	return ctx.JSON(http.StatusOK, TutorResponse{Reply: reply})
}

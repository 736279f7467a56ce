package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/user"
)

type (
	SignInRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Token string     `json:"token"`
		User  *user.User `json:"user,omitempty"`
	}
)

func (sr *SignInRequest) Validate(validate *validator.Validate) error {
	sr.Email = core.CleanString(sr.Email, true /* lower */)
	return validate.Struct(sr)
}

func (s *Server) registerAuthAPI(g *echo.Group, jwt []echo.MiddlewareFunc) {
	// un-authed endpoints
	ag := g.Group("/auth")
	ag.POST("/signup", s.signUp)
	ag.POST("/signin", s.signIn)
	ag.POST("/refresh", s.refresh, jwt...)

	mg := g.Group("/me", jwt...)
	mg.GET("", s.retrieveProfile)
	mg.PUT("", s.updateProfile)
	mg.GET("/metrics", s.profileMetrics)
}

func (s *Server) signUp(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	usr, err := s.UserSvc.SignUp(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	token, err := s.issueToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, TokenResponse{Token: token, User: &usr})
}

func (s *Server) signIn(ctx echo.Context) error {
	var data SignInRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignInRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	usr, err := s.UserSvc.SignIn(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "signing in")
	}
	token, err := s.issueToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token, User: &usr})
}

func (s *Server) refresh(ctx echo.Context) error {
	token, err := s.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (s *Server) retrieveProfile(ctx echo.Context) error {
	usr, err := s.UserSvc.Current(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (s *Server) updateProfile(ctx echo.Context) error {
	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	usr, err := s.UserSvc.UpdateProfile(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (s *Server) profileMetrics(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	usr, err := s.UserSvc.Current(reqCtx)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	m, err := s.MetricsSvc.Profile(reqCtx, usr)
	if err != nil {
		return errors.Wrap(err, "computing metrics")
	}
	return ctx.JSON(http.StatusOK, m)
}

package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
)

func (s *Server) registerModuleAPI(g *echo.Group, jwt []echo.MiddlewareFunc) {
	mg := g.Group("/modules")
	mg.GET("", s.queryModules)
	mg.GET("/:id", s.retrieveModule)
	mg.GET("/:id/export", s.exportModule)

	// teacher endpoints; ownership is checked by the service
	teacher := withRole(jwt, core.RoleTeacher)
	mg.POST("", s.createModule, teacher...)
	mg.PUT("/:id", s.updateModule, teacher...)
	mg.DELETE("/:id", s.destroyModule, teacher...)
}

func (s *Server) queryModules(ctx echo.Context) error {
	filter := new(module.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []module.Module{})
	}

	mods, err := s.ModuleSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	if mods == nil {
		mods = []module.Module{}
	}
	return ctx.JSON(http.StatusOK, mods)
}

func (s *Server) retrieveModule(ctx echo.Context) error {
	mod, err := s.ModuleSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding module by ID")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (s *Server) exportModule(ctx echo.Context) error {
	filename, body, err := s.ModuleSvc.Export(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "exporting module")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, []byte(body))
}

func (s *Server) createModule(ctx echo.Context) error {
	var data module.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	data.Content = module.CleanExtractedMarkup(data.Content)

	mod, err := s.ModuleSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (s *Server) updateModule(ctx echo.Context) error {
	var data module.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	if data.Content != nil {
		content := module.CleanExtractedMarkup(*data.Content)
		data.Content = &content
	}

	mod, err := s.ModuleSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (s *Server) destroyModule(ctx echo.Context) error {
	if err := s.ModuleSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/tutor"
)

func TestMonitor_Middleware(t *testing.T) {
	m := New()
	app := echo.New()
	app.Use(m.Middleware())
	app.GET("/v1/modules/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	app.GET("/v1/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusForbidden) })
	app.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, path := range []string{"/v1/modules/1", "/v1/modules/2", "/v1/fail"} {
		app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/v1/modules/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/v1/fail", "403")))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMonitor_MiddlewareWrappedErrors(t *testing.T) {
	m := New()
	app := echo.New()
	app.HTTPErrorHandler = func(err error, c echo.Context) {
		if errors.Is(err, module.ErrNotFound) {
			_ = c.NoContent(http.StatusNotFound)
			return
		}
		_ = c.NoContent(http.StatusInternalServerError)
	}
	app.Use(m.Middleware())
	app.GET("/v1/modules/:id", func(c echo.Context) error {
		return errors.Wrap(module.ErrNotFound, "finding module by ID")
	})
	app.GET("/v1/broken", func(c echo.Context) error { return errors.New("boom") })

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/modules/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/broken", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/v1/modules/:id", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/v1/modules/:id", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/v1/broken", "500")))
}

func TestMonitor_Observe(t *testing.T) {
	m := New()
	m.ObserveSession(session.StudySession{Duration: 70})
	m.ObserveSession(session.StudySession{Duration: 125})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsRecorded))
	assert.Equal(t, 195.0, testutil.ToFloat64(m.StudySeconds))

	m.ObserveTutorReply("Cells divide.")
	m.ObserveTutorReply(tutor.FallbackErrorReply)
	m.ObserveTutorReply(tutor.FallbackErrorReply)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TutorReplies.WithLabelValues("answered")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TutorReplies.WithLabelValues("error")))
}

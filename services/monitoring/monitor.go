package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/tutor"
)

// Monitor owns the application collectors and the registry they are exposed from.
type Monitor struct {
	registry *prometheus.Registry

	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SessionsRecorded prometheus.Counter
	StudySeconds     prometheus.Counter
	TutorReplies     *prometheus.CounterVec
}

func New() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		SessionsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracked_study_sessions_total",
			Help: "Total number of recorded study sessions",
		}),
		StudySeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracked_study_seconds_total",
			Help: "Total number of recorded study seconds",
		}),
		TutorReplies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracked_tutor_replies_total",
				Help: "Total number of tutor replies, by outcome",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.SessionsRecorded,
		m.StudySeconds,
		m.TutorReplies,
	)
	return m
}

// Middleware counts and times every request by route.
func (m *Monitor) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				// let the error handler write the response to count its status
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			m.RequestCounter.WithLabelValues(c.Request().Method, c.Path(), status).Inc()
			m.RequestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func (m *Monitor) ObserveSession(sess session.StudySession) {
	m.SessionsRecorded.Inc()
	m.StudySeconds.Add(float64(sess.Duration))
}

func (m *Monitor) ObserveTutorReply(reply string) {
	outcome := "answered"
	switch reply {
	case tutor.FallbackEmptyReply:
		outcome = "empty"
	case tutor.FallbackErrorReply:
		outcome = "error"
	}
	m.TutorReplies.WithLabelValues(outcome).Inc()
}

func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/metrics"
	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/reminder"
	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/tutor"
	"github.com/tracked-edu/tracked/core/user"
	"github.com/tracked-edu/tracked/services/monitoring"
)

type ServerDeps struct {
	Conf        *core.Config
	Logger      core.Logger
	Monitor     *monitoring.Monitor
	Mailer      core.EmailService
	UserSvc     *user.Service
	ModuleSvc   *module.Service
	SessionSvc  *session.Service
	ReminderSvc *reminder.Service
	MetricsSvc  *metrics.Service
	TutorSvc    *tutor.Service
	Validate    *validator.Validate
	Translator  ut.Translator
}

type Server struct {
	ServerDeps
	app      *echo.Echo
	jwt      middleware.JWTConfig
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		jwt:        newJWTConfig(deps.Conf),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if s.Conf.Debug && !s.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.Monitor.Middleware())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)
	s.app.Debug = s.Conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(s.Monitor.Handler()))

	v1 := s.app.Group("/v1")
	jwt := []echo.MiddlewareFunc{middleware.JWTWithConfig(s.jwt), identityMiddleware}

	s.registerAuthAPI(v1, jwt)
	s.registerModuleAPI(v1, jwt)
	s.registerSessionAPI(v1, jwt)
	s.registerReminderAPI(v1, jwt)
	s.registerTutorAPI(v1, jwt)
}

// Start blocks until the listener fails; the failure is sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.Conf.AppName+" API!")
}

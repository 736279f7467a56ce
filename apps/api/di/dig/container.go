package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/tracked-edu/tracked/apps/api/echo"
	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/metrics"
	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/reminder"
	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/tutor"
	"github.com/tracked-edu/tracked/core/user"
	emailsvc "github.com/tracked-edu/tracked/services/email"
	logsvc "github.com/tracked-edu/tracked/services/logger"
	"github.com/tracked-edu/tracked/services/monitoring"
	tutorsvc "github.com/tracked-edu/tracked/services/tutor"
	"github.com/tracked-edu/tracked/storage"
)

type Repositories struct {
	dig.Out
	Users     user.Repository
	Modules   module.Repository
	Sessions  session.Repository
	Reminders reminder.Repository
}

type ServerParams struct {
	dig.In
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

func newStorage(conf *core.Config, logger core.Logger) *storage.Repositories {
	repos, err := storage.Prepare(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	return repos
}

func splitRepositories(repos *storage.Repositories) Repositories {
	return Repositories{
		Users:     repos.Users,
		Modules:   repos.Modules,
		Sessions:  repos.Sessions,
		Reminders: repos.Reminders,
	}
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	return validate
}

func newTutorService(conf *core.Config, client tutor.Client, modules module.Repository, validate *validator.Validate, logger core.Logger) *tutor.Service {
	return tutor.NewService(client, modules, validate, logger, conf.Tutor.Temperature)
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Monitor:     p.Monitor,
		Mailer:      p.Mailer,
		UserSvc:     p.UserSvc,
		ModuleSvc:   p.ModuleSvc,
		SessionSvc:  p.SessionSvc,
		ReminderSvc: p.ReminderSvc,
		MetricsSvc:  p.MetricsSvc,
		TutorSvc:    p.TutorSvc,
		Validate:    p.Validate,
		Translator:  p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(logsvc.New))
	must(c.Provide(newStorage))
	must(c.Provide(splitRepositories))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(monitoring.New))
	must(c.Provide(emailsvc.New))
	must(c.Provide(user.NewService))
	must(c.Provide(module.NewService))
	must(c.Provide(session.NewService))
	must(c.Provide(reminder.NewService))
	must(c.Provide(metrics.NewService))
	must(c.Provide(tutorsvc.NewClient, dig.As(new(tutor.Client))))
	must(c.Provide(newTutorService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}

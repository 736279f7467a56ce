package main

import (
	"context"
	"fmt"

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

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	logger := logsvc.New(conf)

	// set up storage
	repos, err := storage.Prepare(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	// set up services
	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Monitor:     monitoring.New(),
		Mailer:      emailsvc.New(conf, logger),
		UserSvc:     user.NewService(repos.Users, validate),
		ModuleSvc:   module.NewService(repos.Modules, validate),
		SessionSvc:  session.NewService(repos.Sessions, repos.Modules, validate),
		ReminderSvc: reminder.NewService(repos.Reminders, repos.Modules, validate),
		MetricsSvc:  metrics.NewService(repos.Sessions, repos.Modules),
		TutorSvc:    tutor.NewService(tutorsvc.NewClient(conf), repos.Modules, validate, logger, conf.Tutor.Temperature),
		Validate:    validate,
		Translator:  translator,
	})

	run(conf, logger, repos, server)
}

package main

import (
	"log"

	dig_container "github.com/tracked-edu/tracked/apps/api/di/dig"
	echoapi "github.com/tracked-edu/tracked/apps/api/echo"
	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/storage"
)

func startWithDig() {
	c := dig_container.New(core.NewConfig)

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		repos *storage.Repositories,
		server *echoapi.Server,
	) {
		run(conf, logger, repos, server)
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

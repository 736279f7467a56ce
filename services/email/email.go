// Package emailsvc delivers core.EmailMessage values.
package emailsvc

import (
	"io"
	"net/mail"
	"os"

	"github.com/tracked-edu/tracked/core"
)

// New returns the SendGrid service when an API key is configured, the console service otherwise.
func New(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Email.SendgridAPIKey != "" {
		return NewSendgridService(conf, logger)
	}
	var out io.Writer = os.Stdout
	if conf.TestMode {
		out = io.Discard
	}
	return NewConsoleService(conf, out)
}

func defaultFrom(conf *core.Config) mail.Address {
	return mail.Address{Name: conf.AppName, Address: conf.Email.DefaultFrom}
}

func subjectPrefix(conf *core.Config) string {
	return "[" + conf.AppName + "] "
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/metrics"
	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/reminder"
	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/tutor"
	"github.com/tracked-edu/tracked/core/user"
	"github.com/tracked-edu/tracked/storage"
	"github.com/tracked-edu/tracked/storage/kvstore"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	logger     core.Logger
	repos      *storage.Repositories
	translator ut.Translator
	mailer     core.EmailService
	in         io.Reader
	out        io.Writer

	users     *user.Service
	modules   *module.Service
	sessions  *session.Service
	reminders *reminder.Service
	metrics   *metrics.Service
	tutor     *tutor.Service
}

func newCommandLine(conf *core.Config, logger core.Logger, repos *storage.Repositories, client tutor.Client, mailer core.EmailService, in io.Reader, out io.Writer) *commandLine {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	return &commandLine{
		conf:       conf,
		logger:     logger,
		repos:      repos,
		translator: translator,
		mailer:     mailer,
		in:         in,
		out:        out,
		users:      user.NewService(repos.Users, validate),
		modules:    module.NewService(repos.Modules, validate),
		sessions:   session.NewService(repos.Sessions, repos.Modules, validate),
		reminders:  reminder.NewService(repos.Reminders, repos.Modules, validate),
		metrics:    metrics.NewService(repos.Sessions, repos.Modules),
		tutor:      tutor.NewService(client, repos.Modules, validate, logger, conf.Tutor.Temperature),
	}
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	cli.printf("  signup -email EMAIL -username NAME -role teacher|student - create an account (password prompted)\n")
	cli.printf("  signin -email EMAIL                   - sign in (password prompted)\n")
	cli.printf("  signout                               - forget the signed-in user\n")
	cli.printf("  whoami                                - show the signed-in user\n")
	cli.printf("  profile [-username N] [-email E] [-password] - edit your profile\n")
	cli.printf("  modules [-search TEXT] [-mine]        - list modules, newest first\n")
	cli.printf("  module add|edit|rm|export ...         - manage modules (teachers) or export one\n")
	cli.printf("  study -module ID [-minutes 15|25|45|60] - run the study timer (p pause, r resume, d done, q quit)\n")
	cli.printf("  history                               - list your study sessions\n")
	cli.printf("  remind -module ID -at \"YYYY-MM-DD HH:MM\" - schedule a review reminder\n")
	cli.printf("  reminders [-email]                    - list your pending reminders, or email them to you\n")
	cli.printf("  unremind -id ID                       - delete a reminder\n")
	cli.printf("  stats                                 - show your study or teaching metrics\n")
	cli.printf("  ask [-module ID] QUESTION             - ask the AI tutor\n")
	cli.printf("  migrate COMMAND [ARGS]                - run a database migration command (postgres store)\n")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx, err := cli.context(context.Background())
	if err != nil {
		return err
	}

	cmd, cmdArgs := args[1], args[2:]
	switch cmd {
	case "signup":
		return cli.signUp(ctx, cmdArgs)
	case "signin":
		return cli.signIn(ctx, cmdArgs)
	case "signout":
		return cli.signOut(ctx)
	case "whoami":
		return cli.whoAmI(ctx)
	case "profile":
		return cli.editProfile(ctx, cmdArgs)
	case "modules":
		return cli.listModules(ctx, cmdArgs)
	case "module":
		return cli.module(ctx, cmdArgs)
	case "study":
		return cli.study(ctx, cmdArgs)
	case "history":
		return cli.history(ctx)
	case "remind":
		return cli.remind(ctx, cmdArgs)
	case "reminders":
		return cli.listReminders(ctx, cmdArgs)
	case "unremind":
		return cli.unremind(ctx, cmdArgs)
	case "stats":
		return cli.stats(ctx)
	case "ask":
		return cli.ask(ctx, cmdArgs)
	case "migrate":
		return cli.migrate(ctx, cmdArgs)
	default:
		cli.printUsage()
		return errHelp
	}
}

// context returns ctx acting as the signed-in user, if any.
func (cli *commandLine) context(ctx context.Context) (context.Context, error) {
	rec, ok, err := cli.repos.Store.CurrentUser(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reading signed-in user")
	}
	if !ok {
		return ctx, nil
	}
	usr := kvstore.RecordToUser(rec)
	return core.WithIdentity(ctx, usr.Identity()), nil
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	cli.printf("%s", prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.printf("\n")
	if err != nil {
		return "", pkgerrors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	cli.fprintf(cli.out, format, args...)
}

func (cli *commandLine) fprintf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// describe renders err for the terminal.
func (cli *commandLine) describe(err error) string {
	var vErrs validator.ValidationErrors
	if pkgerrors.As(err, &vErrs) {
		msgs := make([]string, 0, len(vErrs))
		for fld, msg := range core.TranslateValidationErrors(vErrs, cli.translator) {
			msgs = append(msgs, fld+": "+msg)
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}

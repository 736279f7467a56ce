package main

import (
	"context"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core/reminder"
)

// reminder times are typed in local time
var reminderLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", time.RFC3339}

func (cli *commandLine) remind(ctx context.Context, args []string) error {
	cmd := cli.flagSet("remind")
	moduleID := cmd.String("module", "", "ID of the module to review.")
	at := cmd.String("at", "", "When to review, as \"YYYY-MM-DD HH:MM\".")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *moduleID == "" || *at == "" {
		cmd.Usage()
		return errHelp
	}

	when, err := parseReminderTime(*at)
	if err != nil {
		return err
	}
	rem, err := cli.reminders.Schedule(ctx, reminder.NewReminder{ModuleID: *moduleID, ScheduledTime: when})
	if err != nil {
		return err
	}
	cli.printf("Reminder set for %q on %s\n", rem.ModuleTitle, rem.ScheduledTime.Local().Format("Mon Jan 2 15:04"))
	return nil
}

func (cli *commandLine) listReminders(ctx context.Context, args []string) error {
	cmd := cli.flagSet("reminders")
	email := cmd.Bool("email", false, "Email the list to your address.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *email {
		n, err := cli.reminders.SendDigest(ctx, cli.mailer)
		if err != nil {
			return err
		}
		if n == 0 {
			cli.printf("No upcoming reminders, nothing was sent.\n")
			return nil
		}
		cli.printf("Emailed %d reminder(s).\n", n)
		return nil
	}

	rems, err := cli.reminders.MyPending(ctx)
	if err != nil {
		return err
	}
	if len(rems) == 0 {
		cli.printf("No upcoming reminders.\n")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	cli.fprintf(w, "ID\tMODULE\tWHEN\n")
	for _, rem := range rems {
		cli.fprintf(w, "%s\t%s\t%s\n", rem.ID, rem.ModuleTitle, rem.ScheduledTime.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (cli *commandLine) unremind(ctx context.Context, args []string) error {
	cmd := cli.flagSet("unremind")
	id := cmd.String("id", "", "Reminder ID.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *id == "" {
		cmd.Usage()
		return errHelp
	}
	if err := cli.reminders.Delete(ctx, *id); err != nil {
		return err
	}
	cli.printf("Reminder deleted.\n")
	return nil
}

func parseReminderTime(s string) (time.Time, error) {
	for _, layout := range reminderLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid time %q, expected YYYY-MM-DD HH:MM", s)
}

package main

import (
	"context"
	"text/tabwriter"

	"github.com/tracked-edu/tracked/core/metrics"
	"github.com/tracked-edu/tracked/core/session"
)

func (cli *commandLine) stats(ctx context.Context) error {
	usr, err := cli.users.Current(ctx)
	if err != nil {
		return err
	}
	m, err := cli.metrics.Profile(ctx, usr)
	if err != nil {
		return err
	}

	if t := m.Teacher; t != nil {
		cli.printf("Modules published: %d\n", t.ModulesPublished)
		cli.printf("Student study sessions: %d\n", t.TotalViews)
		if len(t.Recent) > 0 {
			cli.printf("\nRecent modules:\n")
			for _, mod := range t.Recent {
				cli.printf("  %s  %s\n", mod.CreatedAt.Local().Format("2006-01-02"), mod.Title)
			}
		}
		return nil
	}

	s := m.Student
	cli.printf("Total focus time: %d min\n", s.TotalMinutes)
	cli.printf("Modules studied: %d\n", s.ModulesStudied)
	if len(s.Recent) > 0 {
		cli.printf("\nRecent sessions:\n")
		cli.printSessions(s.Recent)
	}
	return nil
}

func (cli *commandLine) history(ctx context.Context) error {
	sessions, err := cli.sessions.MyHistory(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		cli.printf("No study sessions yet.\n")
		return nil
	}

	titles := map[string]string{}
	recent := make([]metrics.RecentSession, 0, len(sessions))
	for _, sess := range sessions {
		title, ok := titles[sess.ModuleID]
		if !ok {
			title = metrics.UnknownModuleTitle
			if mod, err := cli.modules.GetByID(ctx, sess.ModuleID); err == nil {
				title = mod.Title
			}
			titles[sess.ModuleID] = title
		}
		recent = append(recent, metrics.RecentSession{StudySession: sess, ModuleTitle: title})
	}
	cli.printSessions(recent)
	return nil
}

func (cli *commandLine) printSessions(sessions []metrics.RecentSession) {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	cli.fprintf(w, "WHEN\tMODULE\tDURATION\n")
	for _, sess := range sessions {
		cli.fprintf(w, "%s\t%s\t%s\n", sess.Timestamp.Local().Format("2006-01-02 15:04"), sess.ModuleTitle, session.FormatClock(sess.Duration))
	}
	_ = w.Flush()
}

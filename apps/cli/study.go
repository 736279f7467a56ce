package main

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/tracked-edu/tracked/core/session"
)

// mockable
var (
	newTickerFunc = func(d time.Duration) (<-chan time.Time, func()) {
		ticker := time.NewTicker(d)
		return ticker.C, ticker.Stop
	}
	newTimerFunc = func(rec session.Recorder) *session.Timer {
		return session.NewTimer(rec)
	}
)

type runResult struct {
	res session.Result
	err error
}

func (cli *commandLine) study(ctx context.Context, args []string) error {
	cmd := cli.flagSet("study")
	moduleID := cmd.String("module", "", "ID of the module to study.")
	minutes := cmd.Int("minutes", session.DefaultMinutes, "Timer length: 15, 25, 45 or 60 minutes.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *moduleID == "" {
		cmd.Usage()
		return errHelp
	}

	mod, err := cli.modules.GetByID(ctx, *moduleID)
	if err != nil {
		return err
	}

	timer := newTimerFunc(cli.sessions)
	if err := timer.SetDuration(*minutes); err != nil {
		return err
	}
	if err := timer.SelectModule(mod.ID); err != nil {
		return err
	}
	if err := timer.Start(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ticks, stop := newTickerFunc(time.Second)
	defer stop()

	results := make(chan runResult, 1)
	run := func() {
		go func() {
			res, err := timer.Run(runCtx, ticks)
			results <- runResult{res: res, err: err}
		}()
	}
	run()
	keys := cli.readKeys(runCtx)

	// set while a run that could not be saved waits for a retry
	var saveErr error

	cli.printf("Studying %q for %d minutes. Keys: p pause, r resume, d done, q quit.\n", mod.Title, *minutes)
	for {
		select {
		case r := <-results:
			if r.err == nil {
				cli.printResult(r.res)
				return nil
			}
			if keys == nil || runCtx.Err() != nil {
				return r.err
			}
			saveErr = r.err
			cli.printf("Could not save the session: %s. Press d to retry or q to quit.\n", cli.describe(r.err))
			run()
		case key, ok := <-keys:
			if !ok {
				if saveErr != nil {
					return saveErr
				}
				// no more input: let the countdown finish
				keys = nil
				continue
			}
			switch key {
			case "p":
				if err := timer.Pause(); err == nil {
					cli.printf("Paused at %s\n", session.FormatClock(timer.Snapshot().Remaining))
				}
			case "r":
				if err := timer.Resume(); err == nil {
					cli.printf("Resumed, %s left\n", session.FormatClock(timer.Snapshot().Remaining))
				}
			case "d":
				if _, err := timer.Done(ctx); err != nil {
					saveErr = err
					cli.printf("Could not save the session: %s. Press d to retry or q to quit.\n", cli.describe(err))
				}
			case "q":
				elapsed := timer.Snapshot().Elapsed
				timer.Reset()
				cancel()
				cli.printf("Session abandoned after %s, nothing was saved.\n", session.FormatClock(elapsed))
				return nil
			default:
				cli.printf("%s remaining (%s)\n", session.FormatClock(timer.Snapshot().Remaining), timer.Snapshot().State)
			}
		}
	}
}

// readKeys sends each trimmed, lowercased input line until EOF or ctx is done.
func (cli *commandLine) readKeys(ctx context.Context) <-chan string {
	keys := make(chan string)
	go func() {
		defer close(keys)
		scanner := bufio.NewScanner(cli.in)
		for scanner.Scan() {
			select {
			case keys <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()
	return keys
}

func (cli *commandLine) printResult(res session.Result) {
	switch res.Outcome {
	case session.Completed:
		cli.printf("Session saved: %s of focus.\n", session.FormatClock(res.Seconds))
	default:
		cli.printf("Session discarded: it must last more than %d seconds.\n", session.MinSeconds)
	}
}

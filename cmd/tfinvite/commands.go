package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/itckit/tfinvite/internal/config"
	"github.com/itckit/tfinvite/internal/db"
	"github.com/itckit/tfinvite/internal/itc"
	"github.com/itckit/tfinvite/internal/journal"
	"github.com/itckit/tfinvite/internal/logger"
	"github.com/itckit/tfinvite/internal/models"
	"github.com/itckit/tfinvite/internal/repository"
)

// journalRetention caps how long invite journal rows are kept.
const journalRetention = 90 * 24 * time.Hour

var (
	proxyAddr  string
	groupID    string
	providerID string
	journalDSN string
	verbose    bool

	globalFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "proxy",
			Usage:       "outbound proxy address (http, https or socks5)",
			Destination: &proxyAddr,
		},
		cli.StringFlag{
			Name:        "group-id",
			Usage:       "tester group id (default: the app's default external group)",
			Destination: &groupID,
		},
		cli.StringFlag{
			Name:        "provider-id",
			Usage:       "content provider (team) id (default: inferred from the account)",
			Destination: &providerID,
		},
		cli.StringFlag{
			Name:        "journal-dsn",
			Usage:       "postgres DSN for the invite journal (default: journaling disabled)",
			Destination: &journalDSN,
		},
		cli.BoolFlag{
			Name:        "verbose, v",
			Usage:       "enable debug logging",
			Destination: &verbose,
		},
	}

	inviteCommand = cli.Command{
		Name:      "invite",
		Usage:     "invite a tester to the app's beta program",
		ArgsUsage: "<login email> <app id> <invitee email> [first name] [last name]",
		Action:    invite,
	}

	countCommand = cli.Command{
		Name:      "count",
		Usage:     "print the number of external testers",
		ArgsUsage: "<login email> <app id>",
		Action:    count,
	}

	removeCommand = cli.Command{
		Name:      "remove",
		Usage:     "remove a tester from the app's external testers",
		ArgsUsage: "<login email> <app id> <tester email>",
		Action:    remove,
	}
)

// loadOptions merges flag values with environment overrides.
func loadOptions() *config.Options {
	opts := &config.Options{
		Proxy:             proxyAddr,
		GroupID:           groupID,
		ContentProviderID: providerID,
		JournalDSN:        journalDSN,
		Verbose:           verbose,
	}
	opts.ApplyEnv()
	return opts
}

// newSession builds the logger and an itc.Session for one invocation.
func newSession(login, appID string, opts *config.Options) (*itc.Session, *zap.Logger, error) {
	log := logger.New()
	if opts.Verbose {
		if err := log.Init("debug"); err != nil {
			return nil, nil, err
		}
	}

	password, err := readPassword()
	if err != nil {
		return nil, nil, errMissingPassword
	}

	sess, err := itc.NewSession(itc.Options{
		Login:             login,
		Password:          password,
		AppID:             appID,
		ContentProviderID: opts.ContentProviderID,
		GroupID:           opts.GroupID,
		Proxy:             opts.Proxy,
		Logger:            log.Log,
	})
	if err != nil {
		return nil, nil, err
	}
	return sess, log.Log, nil
}

func invite(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 3 {
		_ = cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return cli.NewExitError("invite: login email, app id and invitee email are required", exitUsage)
	}
	login, appID, email := args.Get(0), args.Get(1), args.Get(2)
	firstName, lastName := args.Get(3), args.Get(4)

	opts := loadOptions()
	sess, log, err := newSession(login, appID, opts)
	if err != nil {
		return exitErr(err)
	}

	jr, closeJournal := openJournal(opts, log)
	defer closeJournal()

	_, err = sess.AddTester(context.Background(), email, firstName, lastName)

	var dup *itc.DuplicateTesterError
	switch {
	case errors.As(err, &dup):
		recordInvite(jr, log, appID, email, models.OutcomeDuplicate)
		return cli.NewExitError(fmt.Sprintf("%s is already a tester for app %s", email, appID), exitDuplicate)
	case err != nil:
		recordInvite(jr, log, appID, email, models.OutcomeFailed)
		return cli.NewExitError(fmt.Sprintf("invite failed: %v", err), exitFailure)
	}

	recordInvite(jr, log, appID, email, models.OutcomeInvited)
	fmt.Println("Invite successful")
	return nil
}

func count(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		_ = cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return cli.NewExitError("count: login email and app id are required", exitUsage)
	}
	login, appID := args.Get(0), args.Get(1)

	sess, _, err := newSession(login, appID, loadOptions())
	if err != nil {
		return exitErr(err)
	}

	n, err := sess.NumTesters(context.Background())
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("count failed: %v", err), exitFailure)
	}
	fmt.Printf("%d external testers for app %s\n", n, appID)
	return nil
}

func remove(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 3 {
		_ = cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return cli.NewExitError("remove: login email, app id and tester email are required", exitUsage)
	}
	login, appID, email := args.Get(0), args.Get(1), args.Get(2)

	sess, _, err := newSession(login, appID, loadOptions())
	if err != nil {
		return exitErr(err)
	}

	if err := sess.RemoveTester(context.Background(), email); err != nil {
		return cli.NewExitError(fmt.Sprintf("remove failed: %v", err), exitFailure)
	}
	fmt.Printf("Removed %s from app %s\n", email, appID)
	return nil
}

// openJournal connects the invite journal when a DSN is configured. The
// journal is best-effort: connection failures are logged and disable it
// for this invocation.
func openJournal(opts *config.Options, log *zap.Logger) (*journal.Journal, func()) {
	if opts.JournalDSN == "" {
		return nil, func() {}
	}

	dbh, err := db.InitPostgres(opts.JournalDSN)
	if err != nil {
		log.Warn("invite journal unavailable", zap.Error(err))
		return nil, func() {}
	}
	if err := db.PruneInvites(context.Background(), dbh, journalRetention, log); err != nil {
		log.Warn("invite journal prune failed", zap.Error(err))
	}
	return journal.New(repository.NewPostgresJournalRepository(dbh)), func() { _ = dbh.Close() }
}

func recordInvite(jr *journal.Journal, log *zap.Logger, appID, email, outcome string) {
	if err := jr.Record(context.Background(), appID, email, outcome); err != nil {
		log.Warn("failed to journal invite", zap.Error(err))
	}
}

func exitErr(err error) error {
	if errors.Is(err, errMissingPassword) {
		return cli.NewExitError("failed to read password, aborting", exitNoPassword)
	}
	return cli.NewExitError(err.Error(), exitFailure)
}

package ingest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/core"
	"shiftinsight.com/shiftinsight/infrastructure/communication"
	"shiftinsight.com/shiftinsight/loader"
)

// Open connects to the warehouse described by cfg and wires the configured notifiers.
// The caller closes the service.
func Open(ctx context.Context, cfg *config.Configuration, log *logrus.Logger) (*Service, error) {
	dsn, err := cfg.ResolveDSN(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database: %w", err)
	}

	dm, err := core.New(dsn, cfg.Database.MaxConnections)
	if err != nil {
		return nil, err
	}
	dm.Logger = log
	dm.LogLevel = core.ParseLogLevel(cfg.Database.LogLevel)

	notifiers, err := Notifiers(ctx, cfg)
	if err != nil {
		dm.Close()
		return nil, err
	}

	tolerance := cfg.Tolerance()
	return New(dm, Options{
		Loader: loader.Options{
			BatchSize: cfg.Loader.BatchSize,
			Tolerance: &tolerance,
			Logger:    log,
		},
		LookupChunk: cfg.Loader.LookupChunk,
		Notifiers:   notifiers,
	}), nil
}

// Notifiers returns Slack when a bot token is set and SES e-mail when recipients are set.
func Notifiers(ctx context.Context, cfg *config.Configuration) (communication.Notifiers, error) {
	var notifiers communication.Notifiers
	if cfg.Slack.Token != "" {
		notifiers = append(notifiers, communication.NewSlack(cfg.Slack.Token, communication.SlackOption{
			InfoChannelID:  cfg.Slack.InfoChannelID,
			ErrorChannelID: cfg.Slack.ErrorChannelID,
		}))
	}
	if len(cfg.Report.To) > 0 {
		mailer, err := communication.NewMailer(ctx, cfg.Report.From, cfg.Report.To)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, mailer)
	}
	return notifiers, nil
}

func (s *Service) Close() error {
	return s.dm.Close()
}

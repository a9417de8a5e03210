package communication

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"shiftinsight.com/shiftinsight/loader"
)

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func NewSlack(token string, options SlackOption, clientOptions ...slack.Option) *Slack {
	client := slack.New(token, clientOptions...)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(ctx context.Context, channelID, message string) error {
	if channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.InfoChannelID, message)
}

func (s *Slack) Error(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.ErrorChannelID, message)
}

// LoadCompleted posts the summary line to the info channel, and to the error channel as well on a mismatch.
func (s *Slack) LoadCompleted(ctx context.Context, summary *loader.Summary) error {
	if err := s.Info(ctx, SummaryLine(summary)); err != nil {
		return err
	}
	if !summary.Verification.Match {
		return s.Error(ctx, MismatchLine(summary))
	}
	return nil
}

func (s *Slack) LoadFailed(ctx context.Context, loadID, filename string, cause error) error {
	return s.Error(ctx, FailureLine(loadID, filename, cause))
}

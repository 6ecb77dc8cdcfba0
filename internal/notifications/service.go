package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// Service sends transactional email through SES. Every caller treats
// delivery as best effort; a send failure is logged and swallowed at the
// call site, never propagated into the triggering operation.
type Service struct {
	client  *sesv2.Client
	sender  string
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(cfg aws.Config, sender string, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		client:  sesv2.NewFromConfig(cfg),
		sender:  sender,
		timeout: timeout,
		logger:  logger,
	}
}

// Send delivers a plain-text email to a single recipient.
func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("notifications: send to %s: %w", to, err)
	}
	s.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

package bootstrap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/doctors-portal/internal/config"
	"github.com/wolfman30/doctors-portal/internal/notify"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

// BuildEmailSender picks the confirmation email transport. With
// MAIL_PROVIDER=auto SendGrid is used when a key and sender are set, otherwise
// mail is logged by the stub. The returned name is for startup logs.
func BuildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) (notify.EmailSender, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	sendgrid := func() notify.EmailSender {
		if cfg.MailFromEmail == "" {
			return nil
		}
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.MailFromEmail,
			FromName:  cfg.MailFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}

	switch cfg.MailProvider {
	case "", "auto":
		if s := sendgrid(); s != nil {
			return s, "sendgrid", nil
		}
		logger.Warn("confirmation emails disabled (SENDGRID_API_KEY or MAIL_FROM_EMAIL not set)")
		return notify.NewStubEmailSender(logger), "stub", nil
	case "sendgrid":
		if s := sendgrid(); s != nil {
			return s, "sendgrid", nil
		}
		return nil, "", fmt.Errorf("bootstrap: sendgrid needs SENDGRID_API_KEY and MAIL_FROM_EMAIL")
	case "ses":
		if cfg.MailFromEmail == "" {
			return nil, "", fmt.Errorf("bootstrap: ses needs MAIL_FROM_EMAIL")
		}
		s := notify.NewSESSender(sesClient, notify.SESConfig{FromEmail: cfg.MailFromEmail, FromName: cfg.MailFromName}, logger)
		if s == nil {
			return nil, "", fmt.Errorf("bootstrap: ses client is required")
		}
		return s, "ses", nil
	case "stub":
		return notify.NewStubEmailSender(logger), "stub", nil
	default:
		return nil, "", fmt.Errorf("bootstrap: unknown mail provider %q", cfg.MailProvider)
	}
}

// BuildMailQueue returns the hand-off queue between the booking flow and the
// mail worker.
func BuildMailQueue(cfg *appconfig.Config, redisClient redis.UniversalClient, sqsClient *sqs.Client) (notify.Queue, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	switch cfg.MailQueue {
	case "", "memory":
		return notify.NewMemoryQueue(cfg.MailQueueBuffer), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("bootstrap: redis mail queue needs a reachable REDIS_ADDR")
		}
		return notify.NewRedisQueue(redisClient, cfg.MailQueueKey), nil
	case "sqs":
		if sqsClient == nil || cfg.MailQueueURL == "" {
			return nil, fmt.Errorf("bootstrap: sqs mail queue needs a client and MAIL_QUEUE_URL")
		}
		return notify.NewSQSQueue(sqsClient, cfg.MailQueueURL), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown mail queue %q", cfg.MailQueue)
	}
}

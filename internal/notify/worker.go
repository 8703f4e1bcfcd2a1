package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wolfman30/doctors-portal/internal/observability/metrics"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

const (
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	sendTimeout          = 30 * time.Second
	deleteTimeoutSeconds = 5
)

// Worker drains the mail queue and sends each job once. Failed sends are
// logged and dropped.
type Worker struct {
	queue   Queue
	sender  EmailSender
	logger  *logging.Logger
	metrics *metrics.PortalMetrics
	cfg     workerConfig
}

type workerConfig struct {
	receiveWaitSecs  int
	receiveBatchSize int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

func NewWorker(queue Queue, sender EmailSender, logger *logging.Logger, m *metrics.PortalMetrics, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if sender == nil {
		panic("notify: email sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worker{queue: queue, sender: sender, logger: logger, metrics: m, cfg: cfg}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Debug("mail worker started")
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("mail worker stopping")
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to receive mail jobs", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg Message) {
	defer w.deleteMessage(msg.ReceiptHandle)

	var job mailJob
	if err := json.Unmarshal([]byte(msg.Body), &job); err != nil {
		w.logger.Error("failed to decode mail job", "error", err, "msg_id", msg.ID)
		w.metrics.ObserveMail("invalid")
		return
	}
	if job.Kind != jobKindBookingConfirmation {
		w.logger.Warn("unknown mail job kind", "kind", job.Kind, "msg_id", msg.ID)
		w.metrics.ObserveMail("invalid")
		return
	}

	email, err := RenderConfirmation(job.Confirmation)
	if err != nil {
		w.logger.Error("failed to render confirmation email", "error", err, "msg_id", msg.ID)
		w.metrics.ObserveMail("invalid")
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	if err := w.sender.Send(sendCtx, email); err != nil {
		w.logger.Error("confirmation email failed", "error", err, "to", email.To, "msg_id", msg.ID)
		w.metrics.ObserveMail("failed")
		return
	}
	w.metrics.ObserveMail("sent")
	w.logger.Info("confirmation email sent", "to", email.To, "treatment", job.Confirmation.TreatmentName, "msg_id", msg.ID)
}

func (w *Worker) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeoutSeconds*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete mail job", "error", err)
	}
}

package notify

import "context"

// Queue hands mail jobs from request handlers to the mail worker.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Message is one received job.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

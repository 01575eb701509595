package mail

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sender delivers a single confirmation message.
type Sender interface {
	SendConfirmation(to, username, token string) error
}

type job struct {
	email    string
	username string
	token    string
}

// Dispatcher runs mail delivery off the request path. Failures are logged
// and never surfaced to the request that queued the message.
type Dispatcher struct {
	sender Sender
	logger *logrus.Logger

	queue  chan job
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
}

func NewDispatcher(sender Sender, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger,
		queue:  make(chan job, 64),
	}
}

// Start launches the delivery worker. Calling Start twice is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.run(ctx)
}

// EnqueueConfirmation queues a confirmation email. Drops the message when
// the queue is full rather than blocking the caller.
func (d *Dispatcher) EnqueueConfirmation(email, username, token string) {
	select {
	case d.queue <- job{email: email, username: username, token: token}:
	default:
		d.logger.Warnf("mail queue full, dropping confirmation for %s", email)
	}
}

// Shutdown stops the worker and waits for the in-flight message.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.queue:
			if err := d.sender.SendConfirmation(j.email, j.username, j.token); err != nil {
				d.logger.Warnf("send confirmation to %s: %v", j.email, err)
				continue
			}
			d.logger.Infof("confirmation mail queued for %s delivered", j.email)
		}
	}
}

package auth

import (
	"context"
	"sync"
	"time"
)

// Email delivery is fire-and-forget relative to the request: the dispatcher
// queues work to a background worker so provider latency or failure never
// blocks or fails the enclosing flow. Failures are logged and dropped.

const (
	mailKindActivation = "activation"
	mailKindReset      = "password_reset"

	// mailSendTimeout bounds a single delivery attempt.
	mailSendTimeout = 30 * time.Second
)

type mailJob struct {
	kind    string
	account *Account
}

// Dispatcher is the default MailDispatcher: a buffered queue drained by a
// single background worker.
type Dispatcher struct {
	mailer Mailer
	logger Logger
	queue  chan mailJob

	closeOnce sync.Once
	done      chan struct{}
	drained   chan struct{}
}

var _ MailDispatcher = (*Dispatcher)(nil)

// NewDispatcher starts a dispatcher draining into the given mailer. buffer
// <= 0 falls back to 64 queued messages.
func NewDispatcher(mailer Mailer, logger Logger, buffer int) *Dispatcher {
	if logger == nil {
		logger = defLogger{}
	}
	if buffer <= 0 {
		buffer = 64
	}

	d := &Dispatcher{
		mailer:  mailer,
		logger:  logger,
		queue:   make(chan mailJob, buffer),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}

	go d.worker()

	return d
}

// DispatchActivationEmail queues an activation email. Never blocks; if the
// queue is full the message is dropped with a warning.
func (d *Dispatcher) DispatchActivationEmail(account *Account) {
	d.enqueue(mailJob{kind: mailKindActivation, account: account.Clone()})
}

// DispatchPasswordResetEmail queues a password-reset email. Never blocks.
func (d *Dispatcher) DispatchPasswordResetEmail(account *Account) {
	d.enqueue(mailJob{kind: mailKindReset, account: account.Clone()})
}

// Close stops accepting work and waits for queued messages to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		close(d.queue)
		<-d.drained
	})
}

func (d *Dispatcher) enqueue(job mailJob) {
	if job.account == nil {
		return
	}

	select {
	case <-d.done:
		d.logger.Warn("mail dispatcher closed, dropping %s email for %s", job.kind, job.account.Email)
		return
	default:
	}

	select {
	case d.queue <- job:
	default:
		d.logger.Warn("mail queue full, dropping %s email for %s", job.kind, job.account.Email)
	}
}

func (d *Dispatcher) worker() {
	defer close(d.drained)

	for job := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)

		var err error
		switch job.kind {
		case mailKindActivation:
			err = d.mailer.SendActivationEmail(ctx, job.account)
		case mailKindReset:
			err = d.mailer.SendPasswordResetEmail(ctx, job.account)
		}
		cancel()

		if err != nil {
			d.logger.Error("failed to send %s email to %s: %v", job.kind, job.account.Email, err)
		}
	}
}

// LogMailer is the development Mailer: it prints the links a real provider
// would embed in the activation and reset templates.
type LogMailer struct {
	BaseURL string
	Logger  Logger
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) log() Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return defLogger{}
}

// SendActivationEmail implements Mailer.
func (m *LogMailer) SendActivationEmail(_ context.Context, account *Account) error {
	token := ""
	if account.ActivationToken != nil {
		token = *account.ActivationToken
	}
	m.log().Info("to: %s activation link: %s/account/activate?token=%s", account.Email, m.BaseURL, token)
	return nil
}

// SendPasswordResetEmail implements Mailer.
func (m *LogMailer) SendPasswordResetEmail(_ context.Context, account *Account) error {
	token := ""
	if account.ResetPasswordToken != nil {
		token = *account.ResetPasswordToken
	}
	m.log().Info("to: %s password reset link: %s/account/reset-password?token=%s", account.Email, m.BaseURL, token)
	return nil
}

type noopDispatcher struct{}

func (noopDispatcher) DispatchActivationEmail(*Account)    {}
func (noopDispatcher) DispatchPasswordResetEmail(*Account) {}

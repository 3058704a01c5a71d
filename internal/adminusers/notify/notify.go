// Package notify sends invite, password-reset and passcode messages through
// an external dispatch service. Sends are asynchronous and best-effort: the
// caller gets a channel carrying the outcome and may ignore it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

const defaultTimeout = 10 * time.Second

var ErrNoTemplate = errors.New("notify: no template configured")

// Message is a templated notification for one recipient.
type Message struct {
	To              string
	TemplateID      string
	Personalisation map[string]string
}

// EmailSender delivers an email and returns the provider's reference.
type EmailSender interface {
	SendEmail(ctx context.Context, msg Message) (string, error)
}

// SMSSender delivers a text message and returns the provider's reference.
type SMSSender interface {
	SendSMS(ctx context.Context, msg Message) (string, error)
}

// Purpose selects the SMS template a passcode is sent with.
type Purpose string

const (
	PurposeSignIn                  Purpose = "sign_in"
	PurposeCreateUserFromInvite    Purpose = "create_user_from_invite"
	PurposeCreateServiceFromInvite Purpose = "create_service_from_invite"
)

// Templates holds the dispatch service template ids.
type Templates struct {
	ServiceInviteEmail      string `env:"SERVICE_INVITE_EMAIL"`
	UserInviteEmail         string `env:"USER_INVITE_EMAIL"`
	ForgottenPasswordEmail  string `env:"FORGOTTEN_PASSWORD_EMAIL"`
	SignInSMS               string `env:"SIGN_IN_SMS"`
	CreateUserFromInviteSMS string `env:"CREATE_USER_FROM_INVITE_SMS"`
	ServiceInviteSMS        string `env:"SERVICE_INVITE_SMS"`
}

func (t Templates) sms(p Purpose) string {
	switch p {
	case PurposeCreateUserFromInvite:
		return t.CreateUserFromInviteSMS
	case PurposeCreateServiceFromInvite:
		return t.ServiceInviteSMS
	default:
		return t.SignInSMS
	}
}

// Result is the outcome of one send.
type Result struct {
	Kind      string
	Reference string
	Err       error
}

// Dispatcher runs each send in its own goroutine, detached from the
// request's cancellation but bounded by Timeout.
type Dispatcher struct {
	Email     EmailSender
	SMS       SMSSender
	Templates Templates
	Timeout   time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(email EmailSender, sms SMSSender, templates Templates, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{Email: email, SMS: sms, Templates: templates, Timeout: timeout}
}

func (d *Dispatcher) SendServiceInviteEmail(ctx context.Context, email, inviteURL string) <-chan Result {
	return d.email(ctx, "service_invite_email", Message{
		To:              email,
		TemplateID:      d.Templates.ServiceInviteEmail,
		Personalisation: map[string]string{"link": inviteURL},
	})
}

func (d *Dispatcher) SendUserInviteEmail(ctx context.Context, sender, email, inviteURL string) <-chan Result {
	return d.email(ctx, "user_invite_email", Message{
		To:         email,
		TemplateID: d.Templates.UserInviteEmail,
		Personalisation: map[string]string{
			"username": sender,
			"link":     inviteURL,
		},
	})
}

func (d *Dispatcher) SendForgottenPasswordEmail(ctx context.Context, email, resetURL string) <-chan Result {
	return d.email(ctx, "forgotten_password_email", Message{
		To:              email,
		TemplateID:      d.Templates.ForgottenPasswordEmail,
		Personalisation: map[string]string{"code": resetURL},
	})
}

func (d *Dispatcher) SendPasscode(ctx context.Context, telephone, passcode string, purpose Purpose) <-chan Result {
	msg := Message{
		To:              telephone,
		TemplateID:      d.Templates.sms(purpose),
		Personalisation: map[string]string{"code": passcode},
	}
	return d.dispatch(ctx, "passcode_sms_"+string(purpose), func(ctx context.Context) (string, error) {
		if d.SMS == nil {
			return "", errors.New("notify: no sms sender")
		}
		return d.SMS.SendSMS(ctx, msg)
	})
}

// Wait blocks until every in-flight send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) email(ctx context.Context, kind string, msg Message) <-chan Result {
	return d.dispatch(ctx, kind, func(ctx context.Context) (string, error) {
		if d.Email == nil {
			return "", errors.New("notify: no email sender")
		}
		return d.Email.SendEmail(ctx, msg)
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, kind string, send func(context.Context) (string, error)) <-chan Result {
	out := make(chan Result, 1)
	log := slogx.FromContext(ctx).With(slog.String("notification", kind))
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, d.timeout())
		defer cancel()

		res := Result{Kind: kind}
		func() {
			defer func() {
				if r := recover(); r != nil {
					res.Err = fmt.Errorf("notify: panic: %v", r)
				}
			}()
			res.Reference, res.Err = send(ctx)
		}()

		if res.Err != nil {
			log.Error("notification failed", slog.Any("error", res.Err))
		} else {
			log.Info("notification sent", slog.String("reference", res.Reference))
		}
		out <- res
	}()
	return out
}

func (d *Dispatcher) timeout() time.Duration {
	if d.Timeout <= 0 {
		return defaultTimeout
	}
	return d.Timeout
}

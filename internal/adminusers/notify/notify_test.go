package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingSender) SendEmail(ctx context.Context, msg Message) (string, error) {
	return r.record(msg)
}

func (r *recordingSender) SendSMS(ctx context.Context, msg Message) (string, error) {
	return r.record(msg)
}

func (r *recordingSender) record(msg Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	if r.err != nil {
		return "", r.err
	}
	return "ref-1", nil
}

type blockingSender struct{}

func (blockingSender) SendSMS(ctx context.Context, _ Message) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestDispatcher(t *testing.T) {
	t.Parallel()

	templates := Templates{
		ServiceInviteEmail: "tpl-service-invite",
		UserInviteEmail:    "tpl-user-invite",
		SignInSMS:          "tpl-sign-in",
		ServiceInviteSMS:   "tpl-service-sms",
	}

	t.Run("reports the provider reference", func(t *testing.T) {
		rec := &recordingSender{}
		d := NewDispatcher(rec, rec, templates, time.Second)

		res := <-d.SendUserInviteEmail(context.Background(), "sender@example.com", "new@example.com", "http://selfservice/invites/abc")
		require.NoError(t, res.Err)
		require.Equal(t, "ref-1", res.Reference)
		require.Equal(t, "user_invite_email", res.Kind)

		require.Len(t, rec.sent, 1)
		require.Equal(t, "tpl-user-invite", rec.sent[0].TemplateID)
		require.Equal(t, "sender@example.com", rec.sent[0].Personalisation["username"])
	})

	t.Run("picks the sms template by purpose", func(t *testing.T) {
		rec := &recordingSender{}
		d := NewDispatcher(rec, rec, templates, time.Second)

		<-d.SendPasscode(context.Background(), "+441134960000", "123456", PurposeCreateServiceFromInvite)
		<-d.SendPasscode(context.Background(), "+441134960000", "654321", PurposeSignIn)

		require.Equal(t, "tpl-service-sms", rec.sent[0].TemplateID)
		require.Equal(t, "tpl-sign-in", rec.sent[1].TemplateID)
		require.Equal(t, "654321", rec.sent[1].Personalisation["code"])
	})

	t.Run("failures are reported not raised", func(t *testing.T) {
		rec := &recordingSender{err: errors.New("provider down")}
		d := NewDispatcher(rec, rec, templates, time.Second)

		res := <-d.SendServiceInviteEmail(context.Background(), "new@example.com", "http://link")
		require.EqualError(t, res.Err, "provider down")
	})

	t.Run("survives request cancellation and honours timeout", func(t *testing.T) {
		d := NewDispatcher(nil, blockingSender{}, templates, 20*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		ch := d.SendPasscode(ctx, "+441134960000", "123456", PurposeSignIn)
		cancel()

		res := <-ch
		require.ErrorIs(t, res.Err, context.DeadlineExceeded)
	})

	t.Run("wait drains in-flight sends", func(t *testing.T) {
		rec := &recordingSender{}
		d := NewDispatcher(rec, rec, templates, time.Second)
		for range 5 {
			d.SendServiceInviteEmail(context.Background(), "new@example.com", "http://link")
		}
		d.Wait()

		rec.mu.Lock()
		defer rec.mu.Unlock()
		require.Len(t, rec.sent, 5)
	})

	t.Run("missing sender is an error", func(t *testing.T) {
		d := NewDispatcher(nil, nil, templates, time.Second)
		res := <-d.SendForgottenPasswordEmail(context.Background(), "a@example.com", "http://reset")
		require.Error(t, res.Err)
	})
}

func TestClient(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		if gotBody["template_id"] == "broken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"message":"bad template"}]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"notification-42"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/", "api-key", time.Second)

	ref, err := c.SendSMS(context.Background(), Message{To: "+441134960000", TemplateID: "tpl", Personalisation: map[string]string{"code": "123456"}})
	require.NoError(t, err)
	require.Equal(t, "notification-42", ref)
	mu.Lock()
	require.Equal(t, "/v2/notifications/sms", gotPath)
	require.Equal(t, "Bearer api-key", gotAuth)
	require.Equal(t, "+441134960000", gotBody["phone_number"])
	gotBody = nil
	mu.Unlock()

	_, err = c.SendEmail(context.Background(), Message{To: "a@example.com", TemplateID: "tpl"})
	require.NoError(t, err)
	mu.Lock()
	require.Equal(t, "/v2/notifications/email", gotPath)
	require.Equal(t, "a@example.com", gotBody["email_address"])
	mu.Unlock()

	_, err = c.SendEmail(context.Background(), Message{To: "a@example.com", TemplateID: "broken"})
	require.ErrorContains(t, err, "unexpected status 400")

	_, err = c.SendEmail(context.Background(), Message{To: "a@example.com"})
	require.ErrorIs(t, err, ErrNoTemplate)
}

type fakeSES struct {
	in *ses.SendTemplatedEmailInput
}

func (f *fakeSES) SendTemplatedEmail(_ context.Context, in *ses.SendTemplatedEmailInput, _ ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error) {
	f.in = in
	return &ses.SendTemplatedEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESSender(t *testing.T) {
	t.Parallel()

	api := &fakeSES{}
	s := NewSESSender(api, "noreply@example.com")

	ref, err := s.SendEmail(context.Background(), Message{
		To:              "a@example.com",
		TemplateID:      "invite",
		Personalisation: map[string]string{"link": "http://x"},
	})
	require.NoError(t, err)
	require.Equal(t, "ses-1", ref)
	require.Equal(t, "noreply@example.com", aws.ToString(api.in.Source))
	require.Equal(t, []string{"a@example.com"}, api.in.Destination.ToAddresses)
	require.Equal(t, "invite", aws.ToString(api.in.Template))
	require.JSONEq(t, `{"link":"http://x"}`, aws.ToString(api.in.TemplateData))
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	ref, err := LogSender{}.SendSMS(context.Background(), Message{To: "+441134960000"})
	require.NoError(t, err)
	require.NotEmpty(t, ref)
}

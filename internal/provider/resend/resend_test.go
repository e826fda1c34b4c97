package resend

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/mail-sending-service/internal/email"
	"github.com/shineum/mail-sending-service/internal/provider"
)

type fakeEmails struct {
	err  error
	last *resend.SendEmailRequest
}

func (f *fakeEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.last = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "re_123"}, nil
}

func TestSend(t *testing.T) {
	t.Parallel()

	fake := &fakeEmails{}
	p := NewWithClient("from@example.com", fake)

	msg := &email.Message{Recipient: "to@example.com", Subject: "Topic", Body: "<b>Hi</b>"}
	require.NoError(t, p.Send(context.Background(), msg))

	require.NotNil(t, fake.last)
	assert.Equal(t, "from@example.com", fake.last.From)
	assert.Equal(t, []string{"to@example.com"}, fake.last.To)
	assert.Equal(t, "Topic", fake.last.Subject)
	assert.Equal(t, "<b>Hi</b>", fake.last.Html)
}

func TestSend_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New("validation_error: invalid from")
	p := NewWithClient("from@example.com", &fakeEmails{err: cause})

	err := p.Send(context.Background(), &email.Message{Recipient: "to@example.com"})

	var sendErr *provider.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, "resend", sendErr.Provider)
	assert.ErrorIs(t, err, cause)
}

func TestNew(t *testing.T) {
	t.Parallel()

	p := New(Config{APIKey: "re_key", FromMail: "from@example.com"})
	assert.Equal(t, "resend", p.Name())
	assert.NotNil(t, p.emails)
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of *ses.Client the sender needs.
type SESAPI interface {
	SendTemplatedEmail(ctx context.Context, in *ses.SendTemplatedEmailInput, optFns ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error)
}

// SESSender sends emails as SES templated emails. Template ids are the SES
// template names and the personalisation becomes the template data.
type SESSender struct {
	client      SESAPI
	fromAddress string
}

func NewSESSender(client SESAPI, fromAddress string) *SESSender {
	return &SESSender{client: client, fromAddress: fromAddress}
}

func (s *SESSender) SendEmail(ctx context.Context, msg Message) (string, error) {
	if msg.TemplateID == "" {
		return "", ErrNoTemplate
	}

	data, err := json.Marshal(msg.Personalisation)
	if err != nil {
		return "", fmt.Errorf("failed to encode template data: %w", err)
	}

	out, err := s.client.SendTemplatedEmail(ctx, &ses.SendTemplatedEmailInput{
		Source:       aws.String(s.fromAddress),
		Destination:  &types.Destination{ToAddresses: []string{msg.To}},
		Template:     aws.String(msg.TemplateID),
		TemplateData: aws.String(string(data)),
	})
	if err != nil {
		return "", fmt.Errorf("ses: send templated email: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

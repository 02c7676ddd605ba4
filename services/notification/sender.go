// Package notification sends checkout receipts to customers.
package notification

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

// Sender delivers one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, channel Channel, to, body string) (string, error)
}

type TwilioSender struct {
	client       *twilio.RestClient
	from         string
	whatsAppFrom string
}

func NewTwilioSender(accountSid, authToken, from, whatsAppFrom string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from:         from,
		whatsAppFrom: whatsAppFrom,
	}
}

func (s *TwilioSender) Send(_ context.Context, channel Channel, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if channel == ChannelWhatsApp {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + s.whatsAppFrom)
	} else {
		params.SetTo(to)
		params.SetFrom(s.from)
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", errors.New("twilio returned no message sid")
	}
	return *resp.Sid, nil
}

// LogSender is used when no Twilio account is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, channel Channel, to, body string) (string, error) {
	zap.L().Info("notification not sent, no provider configured",
		zap.String("channel", string(channel)),
		zap.String("to", to),
		zap.Int("length", len(body)))
	return "", nil
}

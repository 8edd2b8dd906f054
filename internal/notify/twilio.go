package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends messages via Twilio SMS or WhatsApp.
type TwilioSender struct {
	client         *twilio.RestClient
	fromNumber     string
	whatsappNumber string
}

// NewTwilioSender creates a sender using the given Twilio credentials.
func NewTwilioSender(accountSID, authToken, fromNumber, whatsappNumber string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		fromNumber:     fromNumber,
		whatsappNumber: whatsappNumber,
	}
}

// Send delivers the message. Recipients in E.164 format (+...) go over
// WhatsApp, anything else over SMS.
func (s *TwilioSender) Send(ctx context.Context, msg Message) error {
	body := msg.Body
	if msg.Subject != "" {
		body = msg.Subject + "\n\n" + msg.Body
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)

	if strings.HasPrefix(msg.Recipient, "+") {
		params.SetTo("whatsapp:" + msg.Recipient)
		params.SetFrom("whatsapp:" + s.whatsappNumber)
	} else {
		params.SetTo(msg.Recipient)
		params.SetFrom(s.fromNumber)
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", msg.Recipient, err)
	}
	if resp.Sid != nil {
		log.Printf("notification sent to %s, SID: %s", msg.Recipient, *resp.Sid)
	}
	return nil
}

// LogSender writes messages to the server log instead of sending them.
// Used when Twilio credentials are not configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	log.Printf("notification (log only) to=%s subject=%q body=%q", msg.Recipient, msg.Subject, msg.Body)
	return nil
}

package mailer

import (
	"encoding/json"
	"fmt"
	"huletfish/src/lib"
	"huletfish/src/types"
	"huletfish/src/utils"
	"os"
)

const EMAIL_QUEUE = "EmailsToSend"

// Queue is the suffixed queue (or local topic) name for outgoing mail.
func Queue() string {
	if q := os.Getenv("EMAIL_QUEUE"); q != "" {
		return utils.WithSuffix(q)
	}
	return utils.WithSuffix(EMAIL_QUEUE)
}

func MailPayload(input *lib.SendMailInput) types.JSONB {
	return types.JSONB{
		"from":      input.From,
		"from-name": input.FromName,
		"to":        input.To,
		"cc":        input.Cc,
		"bcc":       input.Bcc,
		"reply-to":  input.ReplyTo,
		"body":      input.Body,
		"html":      input.Html,
		"subject":   input.Subject,
	}
}

// NewMailerMessage queues the mail: Kafka when running locally, SQS everywhere else.
func NewMailerMessage(input *lib.SendMailInput) error {
	emailBody := MailPayload(input)
	if utils.IsLocal() {
		if err := lib.KafkaProduceMessage("emails", Queue(), "", emailBody); err != nil {
			return fmt.Errorf("error sending message to queue: %w", err)
		}
		return nil
	}
	body, err := json.Marshal(emailBody)
	if err != nil {
		return err
	}
	if err := lib.SQSProduceMessage(Queue(), string(body)); err != nil {
		return fmt.Errorf("error sending message to queue: %w", err)
	}
	return nil
}

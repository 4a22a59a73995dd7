package common

import (
	"context"
	"errors"
	"huletfish/src/lib"
	awslib "huletfish/src/lib/aws"
	"huletfish/src/lib/mailer"
	"log"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

func stringArray(payload string, path string) []string {
	out := make([]string, 0)
	for _, item := range gjson.Get(payload, path).Array() {
		out = append(out, item.String())
	}
	return out
}

// ParseMailPayload is the inverse of mailer.MailPayload.
func ParseMailPayload(payload string) (*lib.SendMailInput, error) {
	if !gjson.Valid(payload) {
		return nil, errors.New("invalid json body")
	}
	input := &lib.SendMailInput{
		From:     gjson.Get(payload, "from").String(),
		FromName: gjson.Get(payload, "from-name").String(),
		To:       stringArray(payload, "to"),
		Cc:       stringArray(payload, "cc"),
		Bcc:      stringArray(payload, "bcc"),
		ReplyTo:  gjson.Get(payload, "reply-to").String(),
		Subject:  gjson.Get(payload, "subject").String(),
		Body:     gjson.Get(payload, "body").String(),
		Html:     gjson.Get(payload, "html").Bool(),
	}
	if len(input.To) == 0 {
		return nil, errors.New("mail has no recipients")
	}
	return input, nil
}

// sendMail goes through SES when MAIL_TRANSPORT=ses, SMTP otherwise.
func sendMail(input *lib.SendMailInput) error {
	if os.Getenv("MAIL_TRANSPORT") == "ses" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return awslib.SESSendMail(ctx, input)
	}
	return lib.SendMail(input)
}

func handleMail(spayload string) {
	input, err := ParseMailPayload(spayload)
	if err != nil {
		log.Printf("[MAILER] Dropping message: %s\n", err.Error())
		return
	}
	log.Printf("from [%s] with subject: %s\n", input.From, input.Subject)
	if err := sendMail(input); err != nil {
		log.Printf("[MAILER] error sending email: %s\n", err.Error())
		return
	}
	log.Printf("[MAILER]: an email has been sent to %s\n", input.To)
}

func EmailsToSendConsumer(ctx context.Context) {
	listen(ctx, EMAILS_GROUPID, mailer.Queue(), mailer.Queue(), handleMail)
}

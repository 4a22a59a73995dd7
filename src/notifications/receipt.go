package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"huletfish/src/lib"
	"huletfish/src/payments"
	"log"
	"os"

	"github.com/yeqown/go-qrcode"
)

type Uploader func(ctx context.Context, key string, body []byte, contentType string) (*string, error)

type MailQueue func(input *lib.SendMailInput) error

// Encrypter seals the payment id printed in the receipt QR code.
type Encrypter func(message string) (string, error)

// ReceiptChannel emails a receipt with a QR code hosts scan at check-in.
type ReceiptChannel struct {
	upload  Uploader
	queue   MailQueue
	encrypt Encrypter
	from    string
}

func NewReceiptChannel(upload Uploader, queue MailQueue, encrypt Encrypter) *ReceiptChannel {
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "payments@huletfish.com"
	}
	return &ReceiptChannel{upload: upload, queue: queue, encrypt: encrypt, from: from}
}

func (r *ReceiptChannel) Name() string { return "receipt" }

func (r *ReceiptChannel) Notify(ctx context.Context, ev payments.Event) error {
	if ev.Customer.Email == "" {
		return nil
	}
	switch ev.Type {
	case payments.EVENT_COMPLETED:
		qrURL, err := r.qrCode(ctx, ev)
		if err != nil {
			// a receipt without the code is still a receipt
			log.Printf("[Receipt] QR code for %s unavailable: %s\n", ev.PaymentID, err.Error())
		}
		return r.queue(r.mail(ev, "Your Hulet Fish receipt "+ev.PaymentID, receiptHTML(ev, qrURL)))
	case payments.EVENT_REFUND_REQUESTED:
		return r.queue(r.mail(ev, "Refund request received "+ev.PaymentID, noticeHTML(ev)))
	}
	return nil
}

func (r *ReceiptChannel) mail(ev payments.Event, subject string, content string) *lib.SendMailInput {
	return &lib.SendMailInput{
		From:     r.from,
		FromName: "Hulet Fish",
		To:       []string{ev.Customer.Email},
		Subject:  subject,
		Body:     content,
		Html:     true,
	}
}

func (r *ReceiptChannel) qrCode(ctx context.Context, ev payments.Event) (string, error) {
	sealed, err := r.encrypt(ev.PaymentID)
	if err != nil {
		return "", err
	}
	qrc, err := qrcode.New(sealed)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return "", err
	}
	url, err := r.upload(ctx, fmt.Sprintf("receipts/%s.jpeg", ev.PaymentID), buf.Bytes(), "image/jpeg")
	if err != nil {
		return "", err
	}
	return *url, nil
}

func receiptHTML(ev payments.Event, qrURL string) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(title(ev)))
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(ev.Customer.Name))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(body(ev)))
	b.WriteString("<table>")
	fmt.Fprintf(&b, "<tr><td>Payment</td><td>%s</td></tr>", html.EscapeString(ev.PaymentID))
	fmt.Fprintf(&b, "<tr><td>Booking</td><td>#%d</td></tr>", ev.BookingID)
	fmt.Fprintf(&b, "<tr><td>Amount</td><td>%s</td></tr>", html.EscapeString(money(ev.Amount, ev.Currency)))
	fmt.Fprintf(&b, "<tr><td>Paid with</td><td>%s</td></tr>", html.EscapeString(string(ev.Gateway)))
	fmt.Fprintf(&b, "<tr><td>Date</td><td>%s</td></tr>", ev.OccurredAt.UTC().Format("02 Jan 2006 15:04 MST"))
	b.WriteString("</table>")
	if qrURL != "" {
		fmt.Fprintf(&b, `<p>Show this code to your host:</p><img src="%s" alt="receipt code" width="200"/>`, html.EscapeString(qrURL))
	}
	return b.String()
}

func noticeHTML(ev payments.Event) string {
	return fmt.Sprintf("<h2>%s</h2><p>Hi %s,</p><p>%s</p><p>Reference: %s</p>",
		html.EscapeString(title(ev)),
		html.EscapeString(ev.Customer.Name),
		html.EscapeString(body(ev)),
		html.EscapeString(ev.PaymentID),
	)
}

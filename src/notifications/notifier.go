package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"huletfish/src/payments"
	"log"
	"time"

	"github.com/tidwall/gjson"
)

// Channel delivers one kind of notification. Events a channel does not care about return nil.
type Channel interface {
	Name() string
	Notify(ctx context.Context, ev payments.Event) error
}

// Notifier fans a payment event out to every channel. One failing channel never blocks the others.
type Notifier struct {
	channels []Channel
	timeout  time.Duration
}

func NewNotifier(channels ...Channel) *Notifier {
	return &Notifier{channels: channels, timeout: 30 * time.Second}
}

func (n *Notifier) Dispatch(ctx context.Context, ev payments.Event) error {
	var errs []error
	for _, c := range n.channels {
		if err := c.Notify(ctx, ev); err != nil {
			log.Printf("[Notifier] %s failed for %s %s: %s\n", c.Name(), ev.Type, ev.PaymentID, err.Error())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleMessage is the queue handler. Bodies that are not payment events are dropped.
func (n *Notifier) HandleMessage(payload string) {
	if !gjson.Valid(payload) {
		log.Println("[Notifier] Received invalid json body. Aborting")
		return
	}
	// SNS envelopes arrive when raw delivery is off
	if msg := gjson.Get(payload, "Message"); msg.Exists() && gjson.Get(payload, "Type").String() == "Notification" {
		payload = msg.String()
	}
	if !gjson.Get(payload, "paymentId").Exists() || !gjson.Get(payload, "type").Exists() {
		log.Println("[Notifier] Message is not a payment event. Skipping")
		return
	}
	var ev payments.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("[Notifier] error deserializing event: %s\n", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	n.Dispatch(ctx, ev)
}

package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"huletfish/src/lib"
	"huletfish/src/models"
	"huletfish/src/payments"
	"huletfish/src/types"
	"strings"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeFCM struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeFCM) Send(_ context.Context, m *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return "projects/huletfish/messages/1", nil
}

type trigger struct {
	channel string
	event   string
	data    any
}

type fakePusher struct {
	mu       sync.Mutex
	triggers []trigger
}

func (f *fakePusher) Trigger(channel string, eventName string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger{channel, eventName, data})
	return nil
}

type failingChannel struct{}

func (failingChannel) Name() string { return "broken" }
func (failingChannel) Notify(context.Context, payments.Event) error {
	return errors.New("boom")
}

type NotifierTestSuite struct {
	suite.Suite
	fcm      *fakeFCM
	pusher   *fakePusher
	sms      map[string]string
	mails    []*lib.SendMailInput
	uploads  []string
	notifier *Notifier
}

func (s *NotifierTestSuite) SetupTest() {
	s.fcm = &fakeFCM{}
	s.pusher = &fakePusher{}
	s.sms = map[string]string{}
	s.mails = nil
	s.uploads = nil

	tokens := func(_ context.Context, userID uint) (string, error) {
		if userID == 7 {
			return "device-7", nil
		}
		return "", nil
	}
	upload := func(_ context.Context, key string, body []byte, contentType string) (*string, error) {
		s.uploads = append(s.uploads, key)
		url := "https://assets.huletfish.test/" + key
		return &url, nil
	}
	queue := func(in *lib.SendMailInput) error {
		s.mails = append(s.mails, in)
		return nil
	}
	encrypt := func(m string) (string, error) { return "sealed:" + m, nil }

	s.notifier = NewNotifier(
		NewPushChannel(s.fcm, tokens),
		NewRealtimeChannel(s.pusher),
		NewSMSChannel(func(_ context.Context, phone, msg string) error {
			s.sms[phone] = msg
			return nil
		}),
		NewReceiptChannel(upload, queue, encrypt),
	)
}

func completedEvent() payments.Event {
	return payments.Event{
		Type:      payments.EVENT_COMPLETED,
		PaymentID: "PAY-1",
		BookingID: 42,
		UserID:    7,
		Gateway:   types.PAYMENT_METHOD_CHAPA,
		Status:    types.PAYMENT_COMPLETED,
		Amount:    1075,
		Currency:  "ETB",
		Customer: models.CustomerInfo{
			Email: "abebe@example.com",
			Phone: "0911 000 000",
			Name:  "Abebe <b>Bikila</b>",
		},
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (s *NotifierTestSuite) TestCompletedFansOut() {
	require.NoError(s.T(), s.notifier.Dispatch(context.Background(), completedEvent()))

	require.Len(s.T(), s.fcm.sent, 1)
	assert.Equal(s.T(), "device-7", s.fcm.sent[0].Token)
	assert.Equal(s.T(), "Payment received", s.fcm.sent[0].Notification.Title)
	assert.Equal(s.T(), "42", s.fcm.sent[0].Data["bookingId"])

	require.Len(s.T(), s.pusher.triggers, 1)
	assert.Equal(s.T(), "private-user-7", s.pusher.triggers[0].channel)
	assert.Equal(s.T(), REALTIME_EVENT, s.pusher.triggers[0].event)

	assert.Contains(s.T(), s.sms["+251911000000"], "1075.00 ETB")

	assert.Equal(s.T(), []string{"receipts/PAY-1.jpeg"}, s.uploads)
	require.Len(s.T(), s.mails, 1)
	mail := s.mails[0]
	assert.Equal(s.T(), []string{"abebe@example.com"}, mail.To)
	assert.True(s.T(), mail.Html)
	assert.Contains(s.T(), mail.Body, "https://assets.huletfish.test/receipts/PAY-1.jpeg")
	assert.Contains(s.T(), mail.Body, "Abebe &lt;b&gt;Bikila&lt;/b&gt;")
}

func (s *NotifierTestSuite) TestFailedSkipsSMSAndReceipt() {
	ev := completedEvent()
	ev.Type = payments.EVENT_FAILED
	ev.Status = types.PAYMENT_FAILED
	ev.Message = "Insufficient balance"

	require.NoError(s.T(), s.notifier.Dispatch(context.Background(), ev))
	require.Len(s.T(), s.fcm.sent, 1)
	assert.Contains(s.T(), s.fcm.sent[0].Notification.Body, "Insufficient balance")
	assert.Len(s.T(), s.pusher.triggers, 1)
	assert.Empty(s.T(), s.sms)
	assert.Empty(s.T(), s.mails)
}

func (s *NotifierTestSuite) TestCheckoutCreatedRealtimeOnly() {
	ev := completedEvent()
	ev.Type = payments.EVENT_CHECKOUT_CREATED
	ev.Status = types.PAYMENT_PROCESSING

	require.NoError(s.T(), s.notifier.Dispatch(context.Background(), ev))
	assert.Empty(s.T(), s.fcm.sent)
	assert.Len(s.T(), s.pusher.triggers, 1)
	assert.Empty(s.T(), s.mails)
}

func (s *NotifierTestSuite) TestRefundRequestedSendsNotice() {
	ev := completedEvent()
	ev.Type = payments.EVENT_REFUND_REQUESTED
	ev.Status = types.PAYMENT_REFUNDED

	require.NoError(s.T(), s.notifier.Dispatch(context.Background(), ev))
	require.Len(s.T(), s.mails, 1)
	assert.True(s.T(), strings.HasPrefix(s.mails[0].Subject, "Refund request received"))
	assert.Empty(s.T(), s.uploads)
}

func (s *NotifierTestSuite) TestNoDeviceNoPush() {
	ev := completedEvent()
	ev.UserID = 8
	require.NoError(s.T(), s.notifier.Dispatch(context.Background(), ev))
	assert.Empty(s.T(), s.fcm.sent)
	assert.Len(s.T(), s.mails, 1)
}

func (s *NotifierTestSuite) TestFailingChannelDoesNotBlockOthers() {
	n := NewNotifier(failingChannel{}, NewRealtimeChannel(s.pusher))
	err := n.Dispatch(context.Background(), completedEvent())
	assert.Error(s.T(), err)
	assert.Len(s.T(), s.pusher.triggers, 1)
}

func (s *NotifierTestSuite) TestHandleMessage() {
	raw, err := json.Marshal(completedEvent())
	require.NoError(s.T(), err)

	s.notifier.HandleMessage(string(raw))
	assert.Len(s.T(), s.pusher.triggers, 1)

	envelope, _ := json.Marshal(map[string]string{"Type": "Notification", "Message": string(raw)})
	s.notifier.HandleMessage(string(envelope))
	assert.Len(s.T(), s.pusher.triggers, 2)

	s.notifier.HandleMessage(`{"from":"x@example.com"}`)
	s.notifier.HandleMessage(`not json`)
	assert.Len(s.T(), s.pusher.triggers, 2)
}

func TestNotifierTestSuite(t *testing.T) {
	suite.Run(t, new(NotifierTestSuite))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+251911000000", normalizePhone("0911000000"))
	assert.Equal(t, "+251911000000", normalizePhone("251911000000"))
	assert.Equal(t, "+14155550100", normalizePhone("+1 (415) 555-0100"))
	assert.Equal(t, "+4930123456", normalizePhone("004930123456"))
	assert.Equal(t, "", normalizePhone("12345"))
	assert.Equal(t, "", normalizePhone(""))
}

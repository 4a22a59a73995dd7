package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestNewMailMsg(t *testing.T) {
	msg, err := NewMailMsg(&SendMailInput{
		From:     "payments@huletfish.test",
		FromName: "Hulet Fish",
		To:       []string{"abebe@example.com"},
		Subject:  "Your payment receipt",
		Body:     "<p>Thanks</p>",
		Html:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Your payment receipt"}, msg.GetGenHeader(mail.HeaderSubject))
	to := msg.GetToString()
	assert.Len(t, to, 1)
	assert.Contains(t, to[0], "abebe@example.com")
}

func TestNewMailMsgRejectsBadRecipient(t *testing.T) {
	_, err := NewMailMsg(&SendMailInput{
		From: "payments@huletfish.test",
		To:   []string{"not an address"},
	})
	assert.Error(t, err)
}

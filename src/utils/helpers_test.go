package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	enc, err := EncryptMessage(key, "PAY-123")
	require.NoError(t, err)
	assert.NotContains(t, enc, "PAY-123")

	dec, err := DecryptMessage(key, enc)
	require.NoError(t, err)
	assert.Equal(t, "PAY-123", *dec)

	_, err = DecryptMessage([]byte(strings.Repeat("x", 32)), enc)
	assert.Error(t, err)
	_, err = DecryptMessage(key, "00")
	assert.Error(t, err)
}

func TestReceiptKey(t *testing.T) {
	t.Setenv("RECEIPT_KEY", strings.Repeat("ab", 32))
	key, err := ReceiptKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	t.Setenv("RECEIPT_KEY", "abcd")
	_, err = ReceiptKey()
	assert.Error(t, err)
}

func TestWithSuffix(t *testing.T) {
	t.Setenv("QUEUE_SUFFIX", "")
	assert.Equal(t, "PaymentEvents", WithSuffix("PaymentEvents"))
	t.Setenv("QUEUE_SUFFIX", "staging")
	assert.Equal(t, "PaymentEvents-staging", WithSuffix("PaymentEvents"))
}

func TestRequestMetadata(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", nil)
	ctx.Request.Header.Set("User-Agent", "HuletFish/2.1 (iPhone)")
	ctx.Request.Header.Set("x-client-source", "iOS")
	ctx.Request.RemoteAddr = "196.188.10.4:5555"

	meta := RequestMetadata(ctx)
	assert.Equal(t, "196.188.10.4", meta.IPAddress)
	assert.Equal(t, "HuletFish/2.1 (iPhone)", meta.UserAgent)
	assert.Equal(t, "ios", meta.Source)

	ctx.Request.Header.Del("x-client-source")
	assert.Equal(t, "web", ClientSource(ctx))
	ctx.Request.Header.Set("x-client-source", "kiosk")
	assert.Equal(t, "other", ClientSource(ctx))
}

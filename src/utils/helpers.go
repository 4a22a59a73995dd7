package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"huletfish/src/models"
	"io"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

func IsLocal() bool {
	return os.Getenv("API_ENV") == "local"
}

// WithSuffix appends QUEUE_SUFFIX so staging and production queues can share an account.
func WithSuffix(name string) string {
	suffix := os.Getenv("QUEUE_SUFFIX")
	if suffix == "" {
		return name
	}
	return fmt.Sprintf("%s-%s", name, suffix)
}

// ClientSource reads the x-client-source header, "web" when absent.
func ClientSource(ctx *gin.Context) string {
	src := strings.ToLower(strings.TrimSpace(ctx.GetHeader("x-client-source")))
	switch src {
	case "web", "ios", "android":
		return src
	case "":
		return "web"
	}
	return "other"
}

func RequestMetadata(ctx *gin.Context) models.PaymentMetadata {
	return models.PaymentMetadata{
		IPAddress: ctx.ClientIP(),
		UserAgent: ctx.Request.UserAgent(),
		Source:    ClientSource(ctx),
	}
}

// ReceiptKey decodes RECEIPT_KEY, a hex encoded AES-256 key.
func ReceiptKey() ([]byte, error) {
	key, err := hex.DecodeString(os.Getenv("RECEIPT_KEY"))
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, errors.New("RECEIPT_KEY must be 32 bytes")
	}
	return key, nil
}

func EncryptMessage(key []byte, message string) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, []byte(message), nil)
	return hex.EncodeToString(cipherText), nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)
	return &decodedString, nil
}

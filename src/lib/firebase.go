package lib

import (
	"context"
	"log"
	"os"
	"path"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	firebaseOnce   sync.Once
	innerMessaging *messaging.Client
	firebaseErr    error
)

func getOpts() option.ClientOption {
	secretsPath := os.Getenv("SECRETS_DIR")
	return option.WithCredentialsFile(path.Join(secretsPath, "admin-sdk-credentials.json"))
}

// GetFirebaseMessaging initializes the app once. Push is optional, so a failure is returned instead of exiting.
func GetFirebaseMessaging() (*messaging.Client, error) {
	firebaseOnce.Do(func() {
		if innerMessaging != nil {
			return
		}
		app, err := firebase.NewApp(context.Background(), nil, getOpts())
		if err != nil {
			log.Printf("[FCM] error initializing app: %s\n", err.Error())
			firebaseErr = err
			return
		}
		msg, err := app.Messaging(context.Background())
		if err != nil {
			log.Printf("[FCM] error initializing messaging: %s\n", err.Error())
			firebaseErr = err
			return
		}
		innerMessaging = msg
	})
	return innerMessaging, firebaseErr
}

func NewFirebaseMessaging(c *messaging.Client) {
	innerMessaging = c
	firebaseErr = nil
}

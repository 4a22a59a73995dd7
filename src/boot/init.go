package boot

import (
	"context"
	"huletfish/src/common"
	"huletfish/src/config"
	"huletfish/src/db"
	"huletfish/src/lib"
	awslib "huletfish/src/lib/aws"
	"huletfish/src/lib/mailer"
	"huletfish/src/models"
	"huletfish/src/notifications"
	"huletfish/src/payments"
	"huletfish/src/utils"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
)

// one unsettled or completed payment per booking; failed and refunded rows do not count
const ActivePaymentIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_active_booking
ON payments (booking_id)
WHERE status IN ('pending', 'processing', 'completed') AND deleted_at IS NULL`

const (
	SWEEP_INTERVAL         = 15 * time.Minute
	RATES_REFRESH_INTERVAL = time.Hour
)

func Models() []any {
	return []any{
		&models.User{},
		&models.Experience{},
		&models.Booking{},
		&models.Payment{},
		&models.WebhookEvent{},
		&models.Setting{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return db.Exec(ActivePaymentIndexSQL).Error
}

func InitDb() *gorm.DB {
	db := db.GetDb()
	if err := Migrate(db); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	return db
}

// InitSecrets pulls gateway keys from Secrets Manager before anything reads them.
func InitSecrets() {
	secretID := os.Getenv("PAYMENTS_SECRET_ID")
	if secretID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	n, err := lib.LoadSecrets(ctx, secretID)
	if err != nil {
		log.Printf("[Secrets] Falling back to environment: %s\n", err.Error())
		return
	}
	log.Printf("[Secrets] Loaded %d keys from %s\n", n, secretID)
}

type Payments struct {
	Service *payments.Service
	Rates   *payments.SettingsRates
}

func InitPayments(gdb *gorm.DB) *Payments {
	cfg := config.LoadPaymentsConfig()
	rates := payments.NewSettingsRates(gdb, config.LoadExchangeRates())
	if err := rates.Refresh(context.Background()); err != nil {
		log.Printf("[Rates] Using configured exchange rates: %s\n", err.Error())
	}

	gateways := []payments.Gateway{
		payments.NewStripeGateway(lib.GetStripeClient(), cfg.StripeWebhookSecret),
		payments.NewChapaGateway(payments.ChapaConfig{
			BaseURL:       cfg.ChapaBaseURL,
			SecretKey:     cfg.ChapaSecretKey,
			WebhookSecret: cfg.ChapaWebhookSecret,
			CallbackURL:   cfg.ChapaCallbackURL(),
		}, nil),
	}

	opts := payments.Options{
		Publisher:        common.NewQueuePublisher(),
		DefaultReturnURL: cfg.DefaultReturnURL(),
	}
	if rdb := lib.GetRedisClient(); rdb != nil {
		opts.Locker = lib.NewRedisLocker(rdb)
	} else {
		log.Println("[Payments] Redis unavailable, checkout relies on the database index alone")
	}

	svc := payments.NewService(payments.NewGormStore(gdb), payments.NewConverter(rates), gateways, opts)
	return &Payments{Service: svc, Rates: rates}
}

func SweepStalePayments(svc *payments.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	res, err := svc.ExpireStalePayments(ctx)
	if err != nil {
		log.Printf("[sweeper] Error sweeping stale payments: %s\n", err.Error())
		return
	}
	log.Printf("[sweeper] checked=%d completed=%d failed=%d expired=%d\n", res.Checked, res.Completed, res.Failed, res.Expired)
}

func RefreshRates(rates *payments.SettingsRates) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := rates.Refresh(ctx); err != nil {
		log.Printf("[Rates] Refresh skipped: %s\n", err.Error())
	}
}

func InitScheduler(p *Payments) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := lib.CreateCronJob("payments.sweep", SWEEP_INTERVAL, SweepStalePayments, p.Service); err != nil {
		return
	}
	if _, err := lib.CreateCronJob("payments.rates", RATES_REFRESH_INTERVAL, RefreshRates, p.Rates); err != nil {
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
	}
}

func InitNotifier() *notifications.Notifier {
	channels := []notifications.Channel{
		notifications.NewRealtimeChannel(lib.GetPusherClient()),
		notifications.NewSMSChannel(lib.SNSSendSMS),
		notifications.NewReceiptChannel(awslib.S3UploadBytes, mailer.NewMailerMessage, func(m string) (string, error) {
			key, err := utils.ReceiptKey()
			if err != nil {
				return "", err
			}
			return utils.EncryptMessage(key, m)
		}),
	}
	fcm, err := lib.GetFirebaseMessaging()
	rdb := lib.GetRedisClient()
	switch {
	case err != nil:
		log.Printf("[FCM] Push notifications disabled: %s\n", err.Error())
	case rdb == nil:
		log.Println("[FCM] Push notifications disabled: no device token store")
	default:
		channels = append(channels, notifications.NewPushChannel(fcm, func(ctx context.Context, userID uint) (string, error) {
			return lib.GetDeviceToken(ctx, rdb, userID)
		}))
	}
	return notifications.NewNotifier(channels...)
}

// InitBroker starts the queue consumers that run alongside the API.
func InitBroker(ctx context.Context) {
	common.CreateLocalTopics()
	common.SNSSubscribes(ctx)
	go common.PaymentEventsConsumer(ctx, InitNotifier())
	go common.EmailsToSendConsumer(ctx)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmarbas/lupon-cms/libs/config"
	"github.com/jmarbas/lupon-cms/libs/db"
	"github.com/jmarbas/lupon-cms/libs/httpx"
	"github.com/jmarbas/lupon-cms/libs/kafkax"
	otelx "github.com/jmarbas/lupon-cms/libs/otel"
	"github.com/jmarbas/lupon-cms/libs/runtime"
	"github.com/jmarbas/lupon-cms/services/notification-service/internal/consumer"
	"github.com/jmarbas/lupon-cms/services/notification-service/internal/email"
	"github.com/jmarbas/lupon-cms/services/notification-service/internal/inbox"
	"github.com/jmarbas/lupon-cms/services/notification-service/internal/notice"
	"github.com/jmarbas/lupon-cms/services/notification-service/internal/outbox"
	"github.com/jmarbas/lupon-cms/services/notification-service/internal/sms"
	"github.com/jmarbas/lupon-cms/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// renderedNotice is one event turned into deliverable text plus the
// recipient coordinates pulled from the payload.
type renderedNotice struct {
	complaintID int64
	caseNumber  string
	sourceEvent string
	subject     string
	body        string
	email       string
	phone       string
}

func writeNoticeOutcome(ctx context.Context, pool *db.Pool, outboxRepo *outbox.Repository, n renderedNotice, channel string, recipient string, failReason string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	eventType := outbox.EventNoticeSent
	fields := map[string]any{
		"complaint_id": n.complaintID,
		"case_number":  n.caseNumber,
		"source_event": n.sourceEvent,
		"channel":      channel,
		"recipient":    recipient,
	}
	if failReason != "" {
		eventType = outbox.EventNoticeFailed
		fields["error_reason"] = failReason
		fields["failed_at"] = time.Now().UTC().Format(time.RFC3339)
	} else {
		fields["sent_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	if err := outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "notice",
		AggregateID:   fmt.Sprintf("%d", n.complaintID),
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "5010")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	inboxRepo := inbox.NewRepository(pool)
	noticesRepo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	smtpHost := config.String("SMTP_HOST", "mailpit")
	smtpPort := config.String("SMTP_PORT", "1025")
	smtpFrom := config.String("SMTP_FROM", "no-reply@lupon.local")
	emailSender := email.NewSMTPSender(smtpHost, smtpPort, smtpFrom)

	smsProvider := strings.ToLower(config.String("SMS_PROVIDER", "noop"))
	smsWebhookURL := config.String("SMS_WEBHOOK_URL", "")
	smsWebhookToken := config.String("SMS_WEBHOOK_TOKEN", "")
	var smsSender sms.Sender
	switch smsProvider {
	case "noop":
		smsSender = sms.NewNoopSender()
	default:
		smsSender = sms.NewWebhookSender(smsWebhookURL, smsWebhookToken)
	}

	hearingTopic := config.String("KAFKA_TOPIC_HEARING_SCHEDULED", "kp.hearing.scheduled.v1")
	statusTopic := config.String("KAFKA_TOPIC_STATUS_CHANGED", "kp.case.status.changed.v1")

	deliver := func(ctx context.Context, n renderedNotice, channel string, recipient string, send func() error) error {
		status := "sent"
		failReason := ""
		if err := send(); err != nil {
			status = "failed"
			failReason = err.Error()
			logger.Error("notice delivery failed", "err", err, "channel", channel, "case_number", n.caseNumber)
		}

		if err := noticesRepo.Insert(ctx, storage.Notice{
			ComplaintID:   n.complaintID,
			CaseNumber:    n.caseNumber,
			EventType:     n.sourceEvent,
			Channel:       channel,
			Recipient:     recipient,
			Subject:       n.subject,
			Body:          n.body,
			Status:        status,
			FailureReason: failReason,
		}); err != nil {
			logger.Error("failed to persist notice", "err", err)
			return err
		}
		if err := writeNoticeOutcome(ctx, pool, outboxRepo, n, channel, recipient, failReason); err != nil {
			logger.Error("failed to enqueue notice event", "err", err)
			return err
		}
		logger.Info("notice processed", "case_number", n.caseNumber, "channel", channel, "status", status)
		return nil
	}

	consumerCfg := consumer.Config{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
		Topics:  []string{hearingTopic, statusTopic},
	}
	eventConsumer := consumer.New(logger, inboxRepo, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
		var n renderedNotice
		switch msg.Topic {
		case hearingTopic:
			var evt notice.HearingScheduled
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				logger.Error("invalid hearing payload", "err", err)
				return nil
			}
			if evt.ComplaintID <= 0 || evt.CaseNumber == "" || evt.Date == "" {
				logger.Error("missing hearing fields", "case_number", evt.CaseNumber)
				return nil
			}
			n = renderedNotice{
				complaintID: evt.ComplaintID,
				caseNumber:  evt.CaseNumber,
				sourceEvent: msg.Topic,
				subject:     evt.Subject(),
				body:        evt.Body(),
				email:       strings.TrimSpace(evt.ComplainantEmail),
				phone:       strings.TrimSpace(evt.ComplainantPhone),
			}
		case statusTopic:
			var evt notice.StatusChanged
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				logger.Error("invalid status payload", "err", err)
				return nil
			}
			if evt.ComplaintID <= 0 || evt.CaseNumber == "" || evt.NewStatus == "" {
				logger.Error("missing status fields", "case_number", evt.CaseNumber)
				return nil
			}
			n = renderedNotice{
				complaintID: evt.ComplaintID,
				caseNumber:  evt.CaseNumber,
				sourceEvent: msg.Topic,
				subject:     evt.Subject(),
				body:        evt.Body(),
				email:       strings.TrimSpace(evt.ComplainantEmail),
				phone:       strings.TrimSpace(evt.ComplainantPhone),
			}
		default:
			logger.Error("unexpected topic", "topic", msg.Topic)
			return nil
		}

		if n.email == "" && n.phone == "" {
			logger.Info("no contact details on record", "case_number", n.caseNumber)
			return nil
		}
		if n.email != "" {
			if err := deliver(ctx, n, "email", n.email, func() error {
				return emailSender.Send(n.email, n.subject, n.body)
			}); err != nil {
				return err
			}
		}
		if n.phone != "" {
			if err := deliver(ctx, n, "sms", n.phone, func() error {
				return smsSender.Send(ctx, n.phone, n.body)
			}); err != nil {
				return err
			}
		}
		return nil
	})
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

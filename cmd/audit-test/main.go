// Manual harness for the audit pipeline: records one event of each kind
// through the Recorder and prints what the review endpoints would see. With
// KAFKA_BROKERS set it also exercises the Kafka publisher.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"medgate/internal/audit"
	"medgate/internal/platform/kafka/producer"
	"medgate/internal/principal"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	store := audit.NewInMemoryStore()
	opts := []audit.RecorderOption{audit.WithLogger(logger)}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		p, err := producer.New(producer.Config{
			Brokers:         brokers,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, logger)
		if err != nil {
			logger.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer p.Close() //nolint:errcheck
		opts = append(opts, audit.WithPublisher(audit.NewKafkaPublisher(p, "medgate.audit")))
		logger.Info("publishing to kafka", "brokers", brokers)
	}

	recorder := audit.NewRecorder(store, opts...)
	principalID := uuid.New()
	location := &principal.GeoPoint{Latitude: 10.0, Longitude: 78.0}

	recorder.Record(ctx, &principalID, audit.KindLoginFail, "Invalid password", nil)
	recorder.Record(ctx, &principalID, audit.KindFaceEnrolled, "Face data stored", nil)
	recorder.Record(ctx, &principalID, audit.KindFaceVerifyFail, "Face verification failed", nil)
	recorder.Record(ctx, &principalID, audit.KindLocationVerifyFail, "Outside permitted premises", location)
	recorder.Record(ctx, &principalID, audit.KindLoginSuccess, "Successful login", location)

	all, total, err := store.ListRecent(ctx, audit.Page{Number: 1, Size: 10})
	if err != nil {
		logger.Error("list recent failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\nrecorded %d events, newest first:\n", total)
	for _, e := range all {
		fmt.Printf("  %-22s suspicious=%-5v %s\n", e.Kind, e.Suspicious, e.Detail)
	}

	suspicious, total, err := store.ListSuspicious(ctx, audit.Page{Number: 1, Size: 10})
	if err != nil {
		logger.Error("list suspicious failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\n%d suspicious events:\n", total)
	for _, e := range suspicious {
		fmt.Printf("  %-22s %s\n", e.Kind, e.Detail)
	}
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// progress-tail follows the pipeline event relay from a terminal. It is a
// read-only operator utility; the api process works the same without it.
func main() {
	_ = godotenv.Load()

	url := os.Getenv("PROGRESS_NATS_URL")
	if url == "" {
		log.Fatal("PROGRESS_NATS_URL is required")
	}
	subject := os.Getenv("PROGRESS_NATS_SUBJECT")
	if subject == "" {
		subject = "docan.progress"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := nats.Connect(url, nats.Name("docan-progress-tail"))
	if err != nil {
		log.Fatalf("connect nats: %v", err)
	}

	_, err = conn.Subscribe(subject, func(msg *nats.Msg) {
		var event domain.ProgressEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("skip malformed event: %v", err)
			return
		}
		log.Printf("[%s] +%.2fs %s", event.Step, event.ElapsedSeconds, event.Message)
	})
	if err != nil {
		log.Fatalf("subscribe %s: %v", subject, err)
	}
	if err := conn.Flush(); err != nil {
		log.Fatalf("flush subscription: %v", err)
	}

	log.Printf("tailing %s on %s", subject, url)
	<-ctx.Done()
	if err := conn.Drain(); err != nil {
		log.Printf("drain: %v", err)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/retail-orders/internal/config"
	dbpostgres "github.com/k-code-yt/retail-orders/internal/db/postgres"
	"github.com/k-code-yt/retail-orders/internal/kafka/producer"
	eventrepo "github.com/k-code-yt/retail-orders/internal/repo/event"
	"github.com/k-code-yt/retail-orders/internal/service/outbox"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment variables")
	}

	db, err := dbpostgres.NewDBConn(config.NewPostgresConfig())
	if err != nil {
		logrus.WithError(err).Fatal("unable to connect to db")
	}
	defer db.Close()

	p, err := producer.NewKafkaProducer(config.NewKafkaConfig())
	if err != nil {
		logrus.WithError(err).Fatal("unable to create kafka producer")
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	logrus.Info("starting outbox relay")
	outbox.NewOutbox(db, eventrepo.NewEventRepo(db), p).Run(ctx)
	logrus.Info("outbox relay stopped")
}

package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/retail-orders/internal/config"
	dbpostgres "github.com/k-code-yt/retail-orders/internal/db/postgres"
	"github.com/k-code-yt/retail-orders/internal/httpapi"
	eventrepo "github.com/k-code-yt/retail-orders/internal/repo/event"
	invrepo "github.com/k-code-yt/retail-orders/internal/repo/inventory"
	orderrepo "github.com/k-code-yt/retail-orders/internal/repo/order"
	seqrepo "github.com/k-code-yt/retail-orders/internal/repo/sequence"
	invsvc "github.com/k-code-yt/retail-orders/internal/service/inventory"
	ordersvc "github.com/k-code-yt/retail-orders/internal/service/order"
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

	orders := ordersvc.NewOrderService(
		db,
		orderrepo.NewOrderRepo(db),
		invrepo.NewInventoryRepo(db),
		eventrepo.NewEventRepo(db),
		seqrepo.NewSequenceRepo(db),
	)
	inventory := invsvc.NewInventoryService(
		db,
		invrepo.NewInventoryRepo(db),
		invrepo.NewCategoryRepo(db),
	)

	httpCfg := config.NewHTTPConfig()
	r := httpapi.NewRouter(orders, inventory)
	logrus.WithField("addr", httpCfg.Addr).Info("starting http server")
	if err := r.Run(httpCfg.Addr); err != nil {
		logrus.WithError(err).Fatal("http server stopped")
	}
}

package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/go-playground/validator/v10"
	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/database/mongoclient"
	"github.com/meridian-chain/corecontracts/base/log"
	bValidator "github.com/meridian-chain/corecontracts/base/validator"
	"github.com/meridian-chain/corecontracts/domain/runtime"
	mmiddleware "github.com/meridian-chain/corecontracts/middleware"
	"github.com/meridian-chain/corecontracts/service/keyvalue"
	market_delivery "github.com/meridian-chain/corecontracts/stores/market/delivery/http"
	market_repository "github.com/meridian-chain/corecontracts/stores/market/repository"
	sale_delivery "github.com/meridian-chain/corecontracts/stores/sale/delivery/http"
	sale_repository "github.com/meridian-chain/corecontracts/stores/sale/repository"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// contract state store: replicated chain storage when mongo is
	// configured, else an empty in-memory view
	var store keyvalue.Store
	if uri := viper.GetString("mongo.uri"); uri != "" {
		context.Info("init mongo")
		client := mongoclient.MustConnectMongoClient(uri)
		store = keyvalue.NewMongo(client,
			viper.GetString("mongo.dbName"),
			viper.GetString("mongo.collection"))
	} else {
		store = keyvalue.NewInMemory()
	}

	auctionRepo := market_repository.NewAuctionRepo(store)
	saleRepo := sale_repository.NewSaleRepo(store)

	market_delivery.New(e, auctionRepo)
	sale_delivery.New(e, saleRepo, runtime.SystemClock{})

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/M4kuro/budget-cloud-solution/config"
	"github.com/M4kuro/budget-cloud-solution/internal/adapter/httphandler"
	"github.com/M4kuro/budget-cloud-solution/internal/adapter/kafka"
	"github.com/M4kuro/budget-cloud-solution/internal/adapter/scheduler"
	"github.com/M4kuro/budget-cloud-solution/internal/adapter/storage"
	"github.com/M4kuro/budget-cloud-solution/internal/core/service"
	"github.com/M4kuro/budget-cloud-solution/pkg/schema"
	"github.com/colinmarc/hdfs/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

type serdes struct {
	changeEvent schema.Serde
	alert       schema.Serde
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	serdes     serdes
	sqlDB      storage.SQLDB
	producer   kafka.AlertsProducer
	consumer   kafka.ChangeEventsConsumer
	tableProc  *kafka.SnapshotTableProcessor
	view       kafka.InventoryView
	scheduler  *scheduler.ReportScheduler
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initSerdes()

	svc := app.initCoreService()
	app.initStreamAdapters(svc)
	app.initInboundAdapters(svc)

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"
	urls := app.cfg.Broker.SchemaRegistryURLs
	ctx := app.ctx

	srClient, err := sr.NewClient(sr.URLs(urls...))
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	changeEventSS := app.cfg.Broker.Topics.ChangeEvents + "-value"
	changeEventSerde, err := schema.NewSerdeChangeEventV1(
		ctx,
		schema.SubjectOpt(changeEventSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	alertSS := app.cfg.Broker.Topics.Alerts + "-value"
	alertSerde, err := schema.NewSerdeAlertV1(
		ctx,
		schema.SubjectOpt(alertSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.changeEvent = changeEventSerde
	app.serdes.alert = alertSerde
}

func (app *App) initCoreService() service.Service {
	const op = "App.initCoreService"

	ctx := app.ctx

	sqlDB, err := storage.NewSQLDB(ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqlDB = sqlDB
	products := storage.NewProductsRepository(sqlDB)

	hdfsClient, err := hdfs.New(app.cfg.HDFS.NamenodeAddr)
	if err != nil {
		app.fallDown(op, err)
	}
	reports, err := storage.NewReportsRepository(
		hdfsClient, app.cfg.HDFS.ReportsDir,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewAlertsProducer(
		kafka.ProducerClientOpt(
			ctx, app.cfg.Broker.SeedBrokers, app.cfg.Broker.Topics.Alerts,
		),
		kafka.ProducerEncoderOpt(app.serdes.alert),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.producer = producer

	return service.New(
		service.Config{
			Threshold:      app.cfg.Inventory.LowStockThreshold,
			CooldownWindow: app.cfg.Inventory.CooldownWindow,
		},
		products,
		products,
		reports,
		producer,
		products,
	)
}

func (app *App) initStreamAdapters(svc service.Service) {
	const op = "App.initStreamAdapters"

	brokerCfg := app.cfg.Broker

	consumer, err := kafka.NewChangeEventsConsumer(
		kafka.ConsumerClientOpt(
			brokerCfg.SeedBrokers,
			brokerCfg.Topics.ChangeEvents,
			brokerCfg.Consumers.ChangeEventsGroup,
		),
		kafka.ConsumerDecoderOpt(app.serdes.changeEvent),
		kafka.ConsumerProcessorOpt(svc),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.consumer = consumer

	tableProc, err := kafka.NewSnapshotTableProc(
		brokerCfg.SeedBrokers,
		brokerCfg.Topics.ChangeEvents,
		brokerCfg.Consumers.SnapshotTableGroup,
		app.serdes.changeEvent,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.tableProc = tableProc

	view, err := kafka.NewInventoryView(
		brokerCfg.SeedBrokers, brokerCfg.Consumers.SnapshotTableGroup,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.view = view

	app.scheduler = scheduler.NewReportScheduler(
		svc, app.cfg.Inventory.ReportInterval,
	)
}

func (app *App) initInboundAdapters(svc service.Service) {
	addr := app.cfg.HTTPServerAddr
	mux := http.NewServeMux()
	httphandler.RegisterImport(mux, svc)
	httphandler.RegisterReports(mux, svc)
	httphandler.RegisterProducts(mux, app.view)

	httpServer := httphandler.NewHTTPServer(addr, mux)
	app.httpServer = httpServer
}

func (app *App) Run(stopFn context.CancelFunc) {
	var wg sync.WaitGroup
	wg.Add(1)
	go app.tableProc.Run(app.ctx, stopFn, &wg)
	wg.Wait()

	go app.view.Run(app.ctx)
	go app.consumer.Run(app.ctx)
	go app.scheduler.Run(app.ctx)
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.scheduler.Close()
	app.consumer.Close()
	app.tableProc.Close()
	app.producer.Close()
	app.sqlDB.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}

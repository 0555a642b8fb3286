package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"lob/api/grpcserver"
	"lob/domain/orderbook"
	"lob/infra/config"
	"lob/infra/kafka"
	"lob/infra/logger"
	"lob/infra/metrics"
	"lob/infra/redis"
	"lob/infra/sequence"
	entrywal "lob/infra/wal/entry"
	exitwal "lob/infra/wal/exit"
	"lob/jobs/broadcaster"
	"lob/jobs/quotes"
	"lob/service"
)

func main() {
	cfg := &config.Config{}
	config.MustLoad(cfg)

	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.LogLevel)))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	log = log.WithFields(logger.NewField("instrument", cfg.Instrument))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	log.Info("book server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// ---------------- Metrics ----------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBook(reg, cfg.Instrument)

	// ---------------- Domain ----------------

	book, err := newBook(cfg.Book)
	if err != nil {
		return err
	}

	// ---------------- Journals ----------------

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:         cfg.WAL.Dir,
		SegmentSize: cfg.WAL.SegmentSize,
	})
	if err != nil {
		return errors.Wrap(err, "entry wal")
	}
	defer entryWAL.Close()

	kafkaEnabled := len(cfg.Kafka.Brokers) > 0

	var exitWAL *exitwal.WAL
	if kafkaEnabled {
		if exitWAL, err = exitwal.Open(cfg.Outbox.Dir); err != nil {
			return err
		}
		defer exitWAL.Close()
	}

	// ---------------- Quote sinks ----------------

	var sinks []quotes.Sink
	if kafkaEnabled {
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.QuotesTopic, cfg.Instrument)
		defer p.Close()
		sinks = append(sinks, p)
	}
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		sinks = append(sinks, redis.NewTopOfBook(client, cfg.Redis.KeyPrefix, cfg.Instrument))
	}

	// ---------------- Service ----------------

	quoteCh := make(chan orderbook.Quote, 1024)
	svc := service.NewOrderService(book, sequence.New(0), service.Deps{
		EntryWAL: entryWAL,
		ExitWAL:  exitWAL,
		Metrics:  m,
		Quotes:   quoteCh,
		Logger:   log.WithFields(logger.NewField("component", "service")),
	})
	if _, err := svc.Recover(cfg.Snapshot.Dir, cfg.WAL.Dir); err != nil {
		return errors.Wrap(err, "recover")
	}

	// ---------------- Background jobs ----------------

	g, ctx := errgroup.WithContext(ctx)

	// Every job that touches a journal runs in g, so the deferred
	// closes above only run after g.Wait.
	g.Go(func() error {
		svc.RunSnapshotJob(ctx, cfg.Snapshot.Dir, cfg.Snapshot.Interval)
		return nil
	})

	if len(sinks) > 0 {
		job := quotes.New(quoteCh, sinks, m, log.WithFields(logger.NewField("component", "quotes")))
		g.Go(func() error {
			job.Run(ctx)
			return nil
		})
	}

	if kafkaEnabled {
		pub, err := broadcaster.NewSaramaPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		if err != nil {
			return err
		}
		bc := broadcaster.New(exitWAL, pub,
			broadcaster.WithInterval(cfg.Outbox.PollInterval),
			broadcaster.WithMaxRetries(cfg.Outbox.MaxRetries),
			broadcaster.WithMetrics(m),
			broadcaster.WithLogger(log.WithFields(logger.NewField("component", "broadcaster"))),
		)
		defer bc.Close()
		g.Go(func() error {
			bc.Run(ctx)
			return nil
		})
	}

	if kafkaEnabled && cfg.Kafka.CommandsTopic != "" {
		reader := kafka.NewCommandReader(cfg.Kafka.Brokers, cfg.Kafka.CommandsTopic, cfg.Kafka.GroupID, svc,
			log.WithFields(logger.NewField("component", "commands")))
		defer reader.Close()
		g.Go(func() error { return reader.Run(ctx) })
	}

	// ---------------- HTTP metrics ----------------

	metricsSrv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "metrics server")
		}
		return nil
	})

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	grpcSrv := grpcserver.NewGRPCServer(grpcserver.NewServer(svc), log.WithFields(logger.NewField("component", "grpc")))
	g.Go(func() error {
		return errors.Wrap(grpcSrv.Serve(lis), "grpc server")
	})

	log.Info("book server running",
		logger.NewField("grpc", cfg.GRPC.Addr),
		logger.NewField("metrics", cfg.Metrics.Addr),
		logger.NewField("kafka", kafkaEnabled),
		logger.NewField("redis", cfg.Redis.Addr != ""),
	)

	// ---------------- Shutdown ----------------

	g.Go(func() error {
		<-ctx.Done()
		grpcSrv.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newBook(cfg config.BookConfig) (*orderbook.OrderBook, error) {
	index, err := orderbook.ParseIndexKind(cfg.Index)
	if err != nil {
		return nil, err
	}
	policy, err := orderbook.ParseUnknownOrderPolicy(cfg.UnknownOrderPolicy)
	if err != nil {
		return nil, err
	}
	return orderbook.NewOrderBook(
		orderbook.WithIndex(index),
		orderbook.WithUnknownOrderPolicy(policy),
		orderbook.WithCapacity(cfg.Capacity),
	), nil
}

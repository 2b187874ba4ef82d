package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/Astemirdum/library-circulation/library/internal/handler"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/library/internal/server"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/Astemirdum/library-circulation/library/migrations"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/logger"
	"github.com/Astemirdum/library-circulation/pkg/postgres"
)

type closer func()

// newRepository opens the configured storage. The returned closer releases it.
func newRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, closer, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("in-memory storage, state is lost on exit")
		return repository.NewMemoryRepository(log), func() {}, nil
	}
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return nil, nil, errors.Wrap(err, "db init")
	}
	repo, err := repository.NewRepository(db, log, cfg.Circulation.LockTimeout)
	if err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "repo")
	}
	return repo, db.Close, nil
}

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := newRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage", zap.Error(err))
	}
	defer closeRepo()

	opts := make([]service.Option, 0, 1)
	var publisher *kafka.Publisher
	if cfg.Kafka.Enable {
		if err = kafka.CreateTopics(cfg.Kafka, kafka.CirculationTopic, kafka.CatalogImportTopic); err != nil {
			log.Fatal("kafka.CreateTopics", zap.Error(err))
		}
		producer, err := kafka.NewSyncProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewSyncProducer", zap.Error(err))
		}
		publisher = kafka.NewPublisher(producer, kafka.CirculationTopic)
		opts = append(opts, service.WithPublisher(publisher))
	}
	svc := service.NewService(repo, cfg.Circulation, log, opts...)

	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter(cfg.Server.RPS))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr",
				net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	if cfg.Kafka.Enable {
		group, err := kafka.NewConsumer(cfg.Kafka, kafka.LibraryConsumerGroup)
		if err != nil {
			log.Fatal("kafka.NewConsumer", zap.Error(err))
		}
		consumer := handler.NewConsumer(svc.ImportBook, log)
		g.Go(func() error {
			defer group.Close()
			return kafka.Consume(gCtx, group, consumer, kafka.CatalogImportTopic)
		})
		go func() {
			select {
			case <-consumer.Ready():
				log.Info("catalog import consumer is up", zap.String("topic", kafka.CatalogImportTopic))
			case <-gCtx.Done():
			}
		}()
	}
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown", zap.Error(context.Cause(gCtx)))

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err = g.Wait(); err != nil {
		log.Error("app stopped", zap.Error(err))
	}
	if publisher != nil {
		if err = publisher.Close(); err != nil {
			log.Warn("publisher.Close", zap.Error(err))
		}
	}
	log.Info("Graceful shutdown finished")
}

// Migrate applies the embedded migrations and exits.
func Migrate(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return errors.Wrap(err, "migrate")
	}
	db.Close()
	log.Info("migrations applied")
	return nil
}

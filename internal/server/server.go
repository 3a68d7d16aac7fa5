package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/emrgen/cadeia/internal/cache"
	"github.com/emrgen/cadeia/internal/compress"
	"github.com/emrgen/cadeia/internal/config"
	"github.com/emrgen/cadeia/internal/jobs"
	"github.com/emrgen/cadeia/internal/module"
	"github.com/emrgen/cadeia/internal/queue"
	"github.com/emrgen/cadeia/internal/service"
	"github.com/emrgen/cadeia/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/gobuffalo/packr"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// NewRouter mounts the v1 API. Everything except the API documentation goes
// through the auth middleware.
func NewRouter(chain *service.ChainService, registry *service.RegistryService, verifier *module.TokenVerifier, insecure bool) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestTimeMiddleware)

	openapiDocs := packr.NewBox("../../docs/v1")
	docsPath := "/v1/docs/"
	r.Handle(docsPath+"*", http.StripPrefix(docsPath, http.FileServer(openapiDocs)))

	r.Route("/v1", func(r chi.Router) {
		r.Use(module.AuthMiddleware(verifier, insecure))
		NewChainHandler(chain).Register(r)
		NewRegistryHandler(registry).Register(r)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // All origins are allowed
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Actor"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

// Start wires the service from the environment and serves it until SIGINT or SIGTERM.
func Start(httpPort string) error {
	cnf := config.LoadConfig()
	if httpPort == "" {
		httpPort = cnf.HttpPort
	}
	httpPort = ":" + httpPort

	rdb := config.GetDb(cnf)
	chainStore := store.NewGormStore(rdb)
	if err := chainStore.Migrate(); err != nil {
		return err
	}

	proposals, err := proposalCache(cnf)
	if err != nil {
		return err
	}
	defer proposals.Close()

	events, err := importQueue(cnf)
	if err != nil {
		return err
	}
	defer events.Close()

	chain := service.NewChainService(chainStore, proposals, events, service.Options{
		MaxDocuments: cnf.MaxChainDocuments,
		ProposalTTL:  cnf.ProposalTTL,
	})

	if cnf.Insecure {
		logrus.Warn("running in insecure mode, tokens are not verified")
	} else if cnf.JwtSecret == "" {
		return errors.New("JWT_SECRET is required unless INSECURE is set")
	}

	executor := jobs.NewTaskExecutor(
		jobs.NewOrphanImportCleaner(cnf.CleanerSchedule, chainStore, service.NewImporter(chainStore, events)),
	)
	if err := executor.Start(); err != nil {
		return err
	}
	defer executor.Stop()

	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: NewRouter(chain, service.NewRegistryService(chainStore), module.NewTokenVerifier(cnf.JwtSecret), cnf.Insecure),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting http server on: ", httpPort)
		logrus.Info("click on the following link to view the API documentation: http://localhost", httpPort, "/v1/docs/")
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting http server: %v", err)
			}
		}
		logrus.Infof("http server stopped")
	}()

	time.Sleep(1 * time.Second)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := restServer.Shutdown(ctx); err != nil {
		logrus.Errorf("error stopping http server: %v", err)
	}

	wg.Wait()

	return nil
}

func proposalCache(cnf *config.Config) (cache.ProposalCache, error) {
	if cnf.RedisAddr == "" {
		logrus.Info("REDIS_ADDR not set, keeping import proposals in memory")
		return cache.NewMemoryProposalCache(), nil
	}

	encoder, err := compress.New(cnf.Compression)
	if err != nil {
		return nil, err
	}

	redis := cache.NewRedis(cache.Options{
		Addr:     cnf.RedisAddr,
		Password: cnf.RedisPassword,
		DB:       cnf.RedisDB,
	}, encoder)
	if err := redis.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	return cache.NewRedisProposalCache(redis), nil
}

func importQueue(cnf *config.Config) (queue.ImportQueue, error) {
	if cnf.KafkaBrokers == "" {
		logrus.Info("KAFKA_BROKERS not set, import events are not published")
		return queue.Nop{}, nil
	}

	producer, err := queue.NewKafka(cnf.KafkaBrokers, cnf.KafkaTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka: %w", err)
	}

	return producer, nil
}

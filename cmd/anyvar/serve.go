package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ga4gh/anyvar/internal/anyvar"
	"github.com/ga4gh/anyvar/internal/asyncjob"
	"github.com/ga4gh/anyvar/internal/broker"
	"github.com/ga4gh/anyvar/internal/broker/memorybroker"
	"github.com/ga4gh/anyvar/internal/broker/redisbroker"
	"github.com/ga4gh/anyvar/internal/dataproxy"
	"github.com/ga4gh/anyvar/internal/httpapi"
	"github.com/ga4gh/anyvar/internal/storage"
	"github.com/ga4gh/anyvar/internal/storage/duckdbstore"
	"github.com/ga4gh/anyvar/internal/storage/pgstore"
	"github.com/ga4gh/anyvar/internal/translate"
	"github.com/ga4gh/anyvar/internal/vcfingest"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the AnyVar HTTP API and async VCF ingest worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := openStore(ctx, viper.GetString("storage.uri"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	proxy, err := openDataProxy(viper.GetString("dataproxy.uri"))
	if err != nil {
		return fmt.Errorf("open dataproxy: %w", err)
	}

	tr := translate.NewNormalizingTranslator(proxy)
	av := anyvar.New(tr, proxy, store)
	av.SetLogger(logger)

	workers := viper.GetInt("async.workers")
	pipeline := vcfingest.New(av, proxy, tr)
	pipeline.SetLogger(logger)

	b, results, err := openBroker(ctx, viper.GetString("async.broker_uri"), viper.GetString("async.result_uri"))
	if err != nil {
		return fmt.Errorf("open broker: %w", err)
	}
	defer b.Close()

	queue := asyncjob.New(b, results, time.Duration(viper.GetInt("async.run_ttl_seconds"))*time.Second)
	queue.SetLogger(logger)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	go func() {
		if err := queue.RunWorker(workerCtx, httpapi.BuildProcess(pipeline, workers)); err != nil && workerCtx.Err() == nil {
			logger.Error("async worker exited", zap.Error(err))
		}
	}()

	workDir := viper.GetString("async.work_dir")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create async work dir: %w", err)
	}
	vh := httpapi.NewVCFHandler(pipeline, queue, workDir, workers)

	srv := httpapi.New(av, queue, vh, viper.GetInt("http.failed_run_status_code"))
	srv.SetLogger(logger)
	srv.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpSrv := &http.Server{Addr: viper.GetString("http.addr"), Handler: srv.Engine}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, uri string) (storage.Store, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse storage.uri: %w", err)
	}
	switch u.Scheme {
	case "", "memory":
		return storage.NewMemStore(), nil
	case "none":
		return storage.NewNoObjectStore(), nil
	case "duckdb":
		// duckdb:///absolute/path.db -> u.Path; duckdb:relative/path.db -> u.Opaque;
		// duckdb://./path.db -> u.Host+u.Path, so "." survives as part of the path.
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		return duckdbstore.Open(path)
	case "postgres", "postgresql":
		return pgstore.Open(ctx, uri)
	default:
		return nil, fmt.Errorf("unsupported storage.uri scheme %q", u.Scheme)
	}
}

func openDataProxy(uri string) (dataproxy.DataProxy, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse dataproxy.uri: %w", err)
	}
	switch u.Scheme {
	case "", "local":
		return dataproxy.NewLocalProxy(), nil
	case "http", "https":
		return dataproxy.NewHTTPProxy(uri, 10*time.Second), nil
	default:
		return nil, fmt.Errorf("unsupported dataproxy.uri scheme %q", u.Scheme)
	}
}

func openBroker(ctx context.Context, brokerURI, resultURI string) (broker.Broker, broker.ResultStore, error) {
	bu, err := url.Parse(brokerURI)
	if err != nil {
		return nil, nil, fmt.Errorf("parse async.broker_uri: %w", err)
	}

	switch bu.Scheme {
	case "", "memory":
		return memorybroker.New(64), memorybroker.NewResultStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: bu.Host})
		b, err := redisbroker.New(ctx, client, redisbroker.DefaultOptions(hostnameOrDefault()))
		if err != nil {
			return nil, nil, err
		}
		results := redisbroker.NewResultStore(client, "anyvar:runs")
		return b, results, nil
	default:
		return nil, nil, fmt.Errorf("unsupported async.broker_uri scheme %q", bu.Scheme)
	}
}

func hostnameOrDefault() string {
	h, err := os.Hostname()
	if err != nil {
		return "anyvar-worker"
	}
	return h
}

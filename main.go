package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/radai/radai/internal/analyzer"
	"github.com/radai/radai/internal/config"
	"github.com/radai/radai/internal/consent"
	"github.com/radai/radai/internal/handlers"
	"github.com/radai/radai/internal/logging"
	"github.com/radai/radai/internal/ultralytics"
)

func main() {
	logger, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	client := ultralytics.NewClient(cfg.APIURL, cfg.ModelURL, cfg.APIKey, logger)
	a := analyzer.New(client, logger)
	issuer := consent.NewIssuer(cfg.ConsentSecret, consent.DefaultTTL)

	r := gin.Default()
	r.MaxMultipartMemory = handlers.MaxUploadSize
	handlers.RegisterRoutes(r, a, issuer)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	logger.Info("RadAI listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("inference_url", cfg.APIURL))
	if err := runServer(server, 15*time.Second, logger, nil, nil); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// runServer serves until the listener fails or a termination signal arrives,
// then drains in-flight requests within shutdownTimeout. The listener and
// signal channel are injectable for tests.
func runServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	serveErr := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()

	if signalCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		signalCh = ch
	}

	select {
	case err := <-serveErr:
		return err
	case sig := <-signalCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-serveErr
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"habitpal/internal/handler"
	"habitpal/internal/httpserver"
	"habitpal/internal/notifier"
	"habitpal/internal/service"
	"habitpal/pkg/circuitbreaker"
	"habitpal/pkg/mq"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reminder scheduler and the local HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cmd)
	},
}

func serve(ctx context.Context, cmd *cobra.Command) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	hub := notifier.NewHub(log)
	notifiers := notifier.Multi{hub}
	var brokerUp func() bool

	// Init MQ publisher
	if cfg.MQ.URL != "" {
		pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Warn("Broker unavailable, reminder events stay local", zap.Error(err))
		} else {
			defer pub.Close()
			brokerUp = pub.IsConnected
			breaker := circuitbreaker.NewCircuitBreaker(notifier.BreakerConfig(log))
			notifiers = append(notifiers, notifier.NewBroker(pub, breaker, log))
			log.Info("Publishing reminder events", zap.String("exchange", cfg.MQ.Exchange))
		}
	}

	// Init service and scheduler
	a, err := newApp(ctx, cfg, log, true, notifiers)
	if err != nil {
		return err
	}
	defer a.scheduler.Close()

	// First run
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if _, err := a.svc.LoadProfile(ctx); errors.Is(err, service.ErrProfileNotFound) {
			if _, err := promptProfile(ctx, a.svc, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				log.Warn("Profile not saved", zap.Error(err))
			}
		}
	}

	// Router
	if !a.cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpserver.NewRouter(
		handler.NewHabitHandler(a.svc, a.cfg.Store.ReportFile, log),
		handler.NewReminderHandler(a.svc, hub, log),
		handler.NewProfileHandler(a.svc, log),
		a.cfg.Server.TokenSecret,
		brokerUp,
		log,
	)

	srv := &http.Server{
		Addr:              a.cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting habitpal", zap.String("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

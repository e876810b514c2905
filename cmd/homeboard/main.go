// Command homeboard runs the household board: REST API, Telegram bot and
// maintenance commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"homeboard/internal/api"
	"homeboard/internal/app"
	"homeboard/internal/bot"
	"homeboard/internal/config"
	"homeboard/internal/logger"
	"homeboard/internal/service"
)

const (
	Version = "0.3.0"
	appName = "homeboard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Household board: chores, shopping list, meals and weather",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd(), botCmd(), sweepCmd(), themeCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})
	return cmd
}

// setup loads the configuration, starts logging and wires the app.
func setup() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.LogDebug, Dir: cfg.LogDir}); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a, err := app.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return a, nil
}

// startScheduler sweeps once right away, then schedules the daily sweep.
func startScheduler(ctx context.Context, a *app.App) (*service.Scheduler, error) {
	if _, err := a.Sweep(ctx); err != nil {
		logger.Warn("startup sweep failed", "err", err)
	}
	s := service.NewScheduler(ctx, a.Location)
	if err := a.Schedule(s); err != nil {
		return nil, err
	}
	return s, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			if a.Config.Store == config.StoreRemote {
				return fmt.Errorf("serve needs STORE=local or STORE=sql")
			}

			scheduler, err := startScheduler(ctx, a)
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			if !a.Config.LogDebug {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{
				Addr:              a.Config.Addr(),
				Handler:           api.NewRouter(a.APIDeps()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", "addr", srv.Addr, "store", a.Config.Store)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
}

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot with periodic summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Config.RequireTelegram(); err != nil {
				return err
			}

			telegramBot, err := bot.New(a.Config.TelegramToken, a.BotDeps())
			if err != nil {
				return err
			}

			scheduler, err := startScheduler(ctx, a)
			if err != nil {
				return err
			}
			id, err := scheduler.Every("summary", a.Config.ReportInterval, telegramBot.SendReports)
			if err != nil {
				return fmt.Errorf("schedule reports: %w", err)
			}
			scheduler.Start()
			defer scheduler.Stop()
			logger.Info("reports scheduled", "every", a.Config.ReportInterval, "next", scheduler.Next(id))

			logger.Info("bot started")
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bot stopped: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete meals outside the current and next week",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("kept %d, deleted %d", report.Kept, report.Deleted)
			if len(report.Failed) > 0 {
				fmt.Printf(", failed %v", report.Failed)
			}
			fmt.Println()
			return nil
		},
	}
}

func themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [system|light|dark]",
		Short:     "Show or set the theme preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"system", "light", "dark"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				if err := a.Local.SetTheme(args[0]); err != nil {
					return err
				}
			}
			fmt.Println(a.Local.Theme())
			return nil
		},
	}
}

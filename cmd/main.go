// @title                       Time Circuits API
// @version                     1.0
// @description                 Keypad, travel and state endpoints of the time circuits panel.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "timecircuits/docs"
	"timecircuits/internal/clock"
	"timecircuits/internal/config"
	"timecircuits/internal/device"
	"timecircuits/internal/handlers"
	"timecircuits/internal/logger"
	"timecircuits/internal/metrics"
	"timecircuits/internal/models"
	"timecircuits/internal/repository"
	"timecircuits/internal/repository/db"
	"timecircuits/internal/server"
	"timecircuits/internal/service"
)

const shutdownTimeout = 10 * time.Second

var errRestartRequested = errors.New("restart requested from keypad")

var configPath string

var rootCmd = &cobra.Command{
	Use:           "timecircuits",
	Short:         "Run the time circuits panel",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default configs/config.yml)")
	rootCmd.AddCommand(newConvertCmd())
}

func main() {
	err := rootCmd.Execute()
	switch {
	case errors.Is(err, errRestartRequested):
		os.Exit(device.RestartExitCode)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log := logger.Get(cfg.Log.Level)

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	restarter := device.NewProcessRestarter(cancel)
	reg := metrics.New()
	repos := repository.NewRepository(sqlDB)
	ctl := service.NewController(*cfg, newDeps(cfg, repos, reg, restarter, log))

	ctl.Boot(ctx)
	services := service.NewService(*cfg, repos, ctl)
	go services.Run(ctx, cfg.Clock.Tick)

	go cancelOnSignal(ctx, cancel, log)

	api := handlers.NewHandler(services, log.Named("http"), reg.Handler())
	log.Infow("http server listening", "port", cfg.Port)
	if err := server.New(cfg.Port, api.InitRoutes(), shutdownTimeout).Serve(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	log.Infow("server stopped")

	if restarter.Requested() {
		return errRestartRequested
	}
	return nil
}

// newDeps builds the virtual hardware around the system clock.
func newDeps(cfg *config.Config, repos *repository.Repository, reg *metrics.Registry, r service.Restarter, log *logger.Logger) service.Deps {
	clk := clock.RealClock{}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	loc, err := time.LoadLocation(cfg.TimeSync.Timezone)
	if err != nil {
		log.Warnw("unknown timezone, using UTC", "timezone", cfg.TimeSync.Timezone, "err", err)
		loc = time.UTC
	}

	playlist := device.NewPlaylist(cfg.Music.Tracks, cfg.Music.Shuffle, rnd, log.Named("music"))
	deps := service.Deps{
		Destination: device.NewVirtualDisplay(models.DisplayDestination),
		Present:     device.NewVirtualDisplay(models.DisplayPresent),
		Departed:    device.NewVirtualDisplay(models.DisplayDeparted),
		Audio:       device.NewLogAudio(clk, log.Named("audio"), playlist),
		RTC:         device.NewSystemRTC(clk, loc),
		NTP:         device.NewNTPSource(cfg.TimeSync.NTPServer, cfg.TimeSync.Timeout),
		Restarter:   r,
		Clocks:      repos.Clock,
		Offsets:     repos.Offset,
		Prefs:       repos.Prefs,
		Events:      repos.Events,
		Clock:       clk,
		Metrics:     reg,
		Log:         log,
		Rand:        rnd,
	}
	if playlist != nil {
		deps.Music = playlist
	}
	return deps
}

// cancelOnSignal cancels ctx on SIGINT or SIGTERM. A keypad restart cancels
// ctx directly.
func cancelOnSignal(ctx context.Context, cancel context.CancelFunc, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}
}

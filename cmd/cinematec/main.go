package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/omar251/CinemaTec-sub001/internal/profile"
	"github.com/omar251/CinemaTec-sub001/internal/version"
	"github.com/omar251/CinemaTec-sub001/server"
	"github.com/omar251/CinemaTec-sub001/store"
	"github.com/omar251/CinemaTec-sub001/store/db"
)

const greetingBanner = `
   ____ _                       _____
  / ___(_)_ __   ___ _ __ ___  |_   _|__  ___
 | |   | | '_ \ / _ \ '_ ` + "`" + ` _ \   | |/ _ \/ __|
 | |___| | | | |  __/ | | | | |  | |  __/ (__
  \____|_|_| |_|\___|_| |_| |_|  |_|\___|\___|
`

var rootCmd = &cobra.Command{
	Use:   "cinematec",
	Short: "A movie relationship graph crawler and explorer",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", slog.String("error", err.Error()))
			return
		}

		if err := run(ctx, instanceProfile); err != nil {
			slog.Error("server exited", slog.String("error", err.Error()))
			os.Exit(1)
		}
	},
}

func run(ctx context.Context, instanceProfile *profile.Profile) error {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return errors.Wrap(err, "failed to create db driver")
	}
	storeInstance := store.New(dbDriver, instanceProfile)

	s, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
		s.Shutdown(ctx)
	}()

	printGreetings(instanceProfile)

	if err := s.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

func printGreetings(p *profile.Profile) {
	fmt.Print(greetingBanner)
	fmt.Printf("version %s, mode %s, driver %s\n", p.Version, p.Mode, p.Driver)
	fmt.Printf("listening on %s:%d\n", p.Addr, p.Port)
	fmt.Printf("---\n")
}

func setupLogger() {
	level := slog.LevelInfo
	if viper.GetString("mode") != "prod" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)
	viper.SetDefault("data", ".")
	viper.SetDefault("driver", "sqlite")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "binding address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "binding port of the server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("cinematec")
	viper.AutomaticEnv()

	cobra.OnInitialize(setupLogger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pageza/recipegen/internal/client"
	"github.com/pageza/recipegen/internal/credentials"
	"github.com/pageza/recipegen/internal/flow"
	"github.com/pageza/recipegen/internal/logging"
	"github.com/pageza/recipegen/internal/service"
	"github.com/pageza/recipegen/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "recipegen:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional for the client as well
	_ = godotenv.Load()

	proxyURL := flag.String("proxy", envOr("RECIPEGEN_PROXY_URL", client.DefaultBaseURL), "base URL of the generate proxy")
	configDir := flag.String("config-dir", os.Getenv("RECIPEGEN_CONFIG_DIR"), "directory for the stored password (default: user config dir)")
	logFile := flag.String("log-file", os.Getenv("RECIPEGEN_LOG_FILE"), "write logs to this file instead of discarding them")
	logout := flag.Bool("logout", false, "forget the stored password and exit")
	flag.Parse()

	// the terminal belongs to the UI, so logs go to a file or nowhere
	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := logging.New(logging.Config{Level: envOr("LOG_LEVEL", "info"), Format: "json", Output: out})
	defer func() { _ = logger.Sync() }()

	store, err := credentials.NewFileStore(*configDir, credentials.WithLogger(logger.Named("credentials")))
	if err != nil {
		return err
	}

	proxy := client.NewProxyClient(*proxyURL, store, client.WithLogger(logger.Named("client")))
	if *logout {
		if err := proxy.ClearCredential(); err != nil {
			return err
		}
		fmt.Println("Stored password removed.")
		return nil
	}

	recipes := service.NewRecipeService(proxy, logger.Named("recipes"))
	changes := tui.NewChanges()
	machine := flow.NewMachine(recipes, proxy, flow.NewState(proxy.HasCredential()),
		flow.WithLogger(logger.Named("flow")),
		flow.WithOnChange(changes.Notify),
	)
	defer machine.Close()

	logger.Info("starting", zap.String("proxy", *proxyURL), zap.String("credentials", store.Path()))
	return tui.Run(machine, changes)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Command multiworld-console is an interactive multiworld client.
//
// It connects to a multiworld server, authenticates a slot, and lets
// the user report location checks, chat, and request hints from a
// readline prompt while the protocol runs on its own tick loop.
//
// Usage:
//
//	multiworld-console [flags]
//
// Flags:
//
//	-config string     Configuration file path (yaml)
//	-host string       Server host
//	-port int          Server port (default 38281)
//	-tls               Use TLS (wss)
//	-game string       Game identifier
//	-slot string       Slot name to authenticate as
//	-password string   Room password
//	-cache-dir string  Data package cache directory
//	-log-file string   Write a CBOR protocol event log to this file
//	-verbose           Mirror protocol events to the console
//
// Examples:
//
//	# Connect to a local server
//	multiworld-console -host localhost -game Selaco -slot Dawn
//
//	# Connect through TLS with a config file and an event log
//	multiworld-console -config client.yaml -tls -log-file session.aplog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/multiworld-protocol/multiworld-go/cmd/multiworld-console/interactive"
	"github.com/multiworld-protocol/multiworld-go/pkg/client"
	"github.com/multiworld-protocol/multiworld-go/pkg/log"
)

var (
	configFile string
	host       string
	port       int
	useTLS     bool
	game       string
	slot       string
	password   string
	cacheDir   string
	logFile    string
	verbose    bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (yaml)")
	flag.StringVar(&host, "host", "", "Server host")
	flag.IntVar(&port, "port", 0, "Server port (default 38281)")
	flag.BoolVar(&useTLS, "tls", false, "Use TLS (wss)")
	flag.StringVar(&game, "game", "", "Game identifier")
	flag.StringVar(&slot, "slot", "", "Slot name to authenticate as")
	flag.StringVar(&password, "password", "", "Room password")
	flag.StringVar(&cacheDir, "cache-dir", "", "Data package cache directory")
	flag.StringVar(&logFile, "log-file", "", "Write a CBOR protocol event log to this file")
	flag.BoolVar(&verbose, "verbose", false, "Mirror protocol events to the console")
}

func main() {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := buildLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	c, err := client.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client error: %v\n", err)
		os.Exit(1)
	}
	if err := c.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "initialize error: %v\n", err)
		os.Exit(1)
	}

	con, err := interactive.New(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go con.RunTicks(ctx)
	go con.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	cancel()
}

// buildConfig merges the optional config file with flag overrides.
func buildConfig() (client.Config, error) {
	var cfg client.Config
	if configFile != "" {
		loaded, err := client.LoadConfig(configFile)
		if err != nil {
			return client.Config{}, err
		}
		cfg = loaded
	}

	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}
	if useTLS {
		cfg.UseTLS = true
	}
	if game != "" {
		cfg.Game = game
	}
	if slot != "" {
		cfg.SlotName = slot
	}
	if password != "" {
		cfg.Password = password
	}
	if cacheDir != "" {
		cfg.DataPackageDir = cacheDir
	}

	return cfg, cfg.Validate()
}

// buildLogger assembles the event logger from the flags: a CBOR file
// log, a console mirror, both, or none.
func buildLogger() (log.Logger, func(), error) {
	var loggers []log.Logger
	closeLog := func() {}

	if logFile != "" {
		fl, err := log.NewFileLogger(logFile)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeLog = func() { _ = fl.Close() }
	}
	if verbose {
		slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		loggers = append(loggers, log.NewSlogAdapter(slogger))
	}

	switch len(loggers) {
	case 0:
		return nil, closeLog, nil
	case 1:
		return loggers[0], closeLog, nil
	default:
		return log.NewMultiLogger(loggers...), closeLog, nil
	}
}

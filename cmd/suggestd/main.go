// Copyright 2025 The Suggestd Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the suggestion engine server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

Suggestd accumulates candidate suggestions from independent proposal
sources, ranks them with a weighted linear feature model, and delivers
bounded, incrementally-updated windows of the top suggestions to
subscribers. It can operate as a MessagePack IPC server for integration
with shells and session managers, or as a CLI application for testing and
debugging.

# Usage

Start the server with default settings:

	suggestd

Use a custom config and enable debug mode:

	suggestd -config /path/to/config.toml -d

Run in CLI mode for interactive testing:

	suggestd -c -limit 10

# Configuration

Runtime configuration is managed through a TOML file that supports engine
parameters, ranking weights, and server limits:

	[engine]
	query_timeout_ms = 9000
	default_query_results = 10

	[ranking]
	hint_weight = 0.5
	annoyance_weight = 0.2

	[interruption]
	threshold = 1.0

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Requests are
processed synchronously with millisecond timing information included in
responses; Next-scope subscriptions additionally push add/remove events as
the ranked window changes.

Propose a suggestion:

	{"id": "r1", "op": "propose", "src": "email", "p": {"pid": "p1", "h": "Reply to Alice", "conf": 0.8}}

Run a query cycle:

	{"id": "r2", "op": "query", "q": "reply", "l": 10}

# Server Mode

The default mode starts a MessagePack IPC server that processes engine
requests from stdin and writes responses to stdout. Query cycles dispatch
to all registered handlers concurrently and stream partial results as
responses arrive, bounded by the configured timeout.

	srv := server.NewServer(eng, appConfig)
	err := srv.Start()

# CLI Mode

CLI mode provides an interactive interface for testing and debugging the
engine. It reads queries from stdin and displays ranked suggestions with
confidence values; colon commands propose and withdraw debug suggestions.

	inputHandler := cli.NewInputHandler(eng, limit, maxQueryLen, noFilter)
	err := inputHandler.Start()

This mode is primarily intended for development and testing new ranking
features before deploying to server mode.

# Engine

The core functionality is provided by the engine, suggest and ranking
packages: a canonical ranked registry per scope, pluggable ranking
features combined by a normalized linear model, windowed delta delivery,
and an interruption gate for urgent suggestions.

	eng := engine.New(cfg, proposal.UUIDGenerator{}, executor, media, ctxWriter)
	eng.Propose("email", p)
	eng.Query("reply", 10, listener)

# Command Line Flags

The following flags control application behavior:

	-config string
	    Path to a TOML config file (default: user config dir)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return (default from config)
	-no-filter
	    Disable query input filtering for debugging
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/suggestd/internal/cli"
	"github.com/bastiangx/suggestd/pkg/config"
	"github.com/bastiangx/suggestd/pkg/engine"
	"github.com/bastiangx/suggestd/pkg/proposal"
	"github.com/bastiangx/suggestd/pkg/server"
)

const (
	Version = "0.3.0-beta"
	AppName = "suggestd"
	gh      = "https://github.com/bastiangx/suggestd"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to a TOML config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.Engine.DefaultQueryResults, "Number of suggestions to return")
	noFilter := flag.Bool("no-filter", false, "Disable query input filtering (DBG only)")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["version"] = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ suggestd ] Ranked suggestions, delivered incrementally!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	eng := engine.New(appConfig, proposal.UUIDGenerator{}, nil, nil, nil)
	// Query cycles answer from the Next scope out of the box.
	eng.RegisterQueryHandler("next", engine.NewNextSearchHandler(eng, appConfig.Server.MaxLimit))
	log.Debug("Engine init done")

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"limit", *limit,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(eng, *limit, appConfig.Server.MaxQueryLen, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(eng, appConfig)

	showStartupInfo(config.GetActiveConfigPath(activePath))

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(configPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, " suggestd ")
	fmt.Fprintln(os.Stderr, "==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("config: ( %s )", configPath)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}

// Mission Control: family dashboard server.
//
// Tasks, a content pipeline, calendar reminders, memory notes, the agent
// roster and dinner ratings, all in one SQLite file, served to AI
// assistants over MCP and to scripts over an HTTP/JSON API.
//
// Usage:
//
//	missioncontrol serve   # Start MCP server (stdio transport)
//	missioncontrol api     # Start the HTTP gateway
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/mission-control/internal/config"
	"github.com/HendryAvila/mission-control/internal/gateway"
	"github.com/HendryAvila/mission-control/internal/logger"
	mcserver "github.com/HendryAvila/mission-control/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = run(serveMCP)
	case "api":
		err = run(serveAPI)
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("missioncontrol v%s\n", mcserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type command func(ctx context.Context, cfg config.Config, svcs *mcserver.Services, log *logger.Logger) error

// run loads configuration, opens the store and runs cmd until it returns
// or the process is interrupted.
func run(cmd command) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	svcs, cleanup, err := mcserver.Bootstrap(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd(ctx, cfg, svcs, log)
}

func serveMCP(ctx context.Context, cfg config.Config, svcs *mcserver.Services, log *logger.Logger) error {
	log.Info("mcp server starting", "data_dir", cfg.DataDir, "version", mcserver.Version)
	stdio := server.NewStdioServer(mcserver.New(svcs))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveAPI(ctx context.Context, cfg config.Config, svcs *mcserver.Services, log *logger.Logger) error {
	if cfg.APIKey == config.DefaultAPIKey {
		log.Warn("using the default API key; set API_KEY before exposing the gateway")
	}
	gw, err := gateway.New(gateway.Config{Addr: cfg.HTTPAddr, APIKey: cfg.APIKey}, svcs, log)
	if err != nil {
		return err
	}
	return gw.Run(ctx)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Mission Control v%s - family dashboard server

Usage:
  missioncontrol serve   Start the MCP server (stdio transport)
  missioncontrol api     Start the HTTP/JSON gateway
  missioncontrol version Print the version

Environment:
  MISSION_CONTROL_CONFIG  YAML config file (optional)
  MISSION_CONTROL_HOME    Data directory (default ~/.mission-control)
  MISSION_CONTROL_ADDR    Gateway listen address (default :8080)
  MISSION_CONTROL_LOG     Log mode: dev or prod
  API_KEY                 Bearer key for the gateway (default dev-key)

MCP config:

  {
    "mcpServers": {
      "mission-control": {
        "command": "missioncontrol",
        "args": ["serve"]
      }
    }
  }
`, mcserver.Version)
}

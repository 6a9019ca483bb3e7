// replayd serves a recorded audit scenario over the orchestrator API surface.
// It exists for local development of the console: point auditdeck at it and
// watch a canned task play back in real time.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/auditdeck/auditdeck/internal/config"
	"github.com/auditdeck/auditdeck/internal/constants"
	"github.com/auditdeck/auditdeck/internal/logger"
	"github.com/auditdeck/auditdeck/internal/replay"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "Path to the scenario YAML file")
		port         = flag.Int("port", 0, "Port to listen on (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger.Initialize(constants.Production, level)

	path := cfg.ScenarioPath
	if *scenarioPath != "" {
		path = *scenarioPath
	}
	if path == "" {
		slog.Error("no scenario given; pass -scenario or set scenario_path")
		os.Exit(1)
	}

	listenPort := cfg.Port
	if *port != 0 {
		listenPort = *port
	}

	scenario, err := replay.LoadScenario(path)
	if err != nil {
		slog.Error("failed to load scenario", "path", path, "error", err)
		os.Exit(1)
	}

	if err := replay.Run(context.Background(), scenario, listenPort, slog.Default()); err != nil {
		slog.Error("replay server exited", "error", err)
		os.Exit(1)
	}
}

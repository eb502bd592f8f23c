// Command mcp-server exposes the attack pattern catalog and the collector's
// click counters to MCP clients over stdio.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/api"
	"github.com/patrickwarner/adsdk/internal/catalog"
	"github.com/patrickwarner/adsdk/internal/config"
	"github.com/patrickwarner/adsdk/internal/db"
	"github.com/patrickwarner/adsdk/internal/observability"
)

func newStderrLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(observability.LevelFromEnv())
	cfg.OutputPaths = []string{"stderr"}      // stdout carries the MCP protocol
	cfg.ErrorOutputPaths = []string{"stderr"} // Force stderr for errors

	// Use same encoder config as observability package for consistency
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "logger"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("adsdk-mcp").With(zap.String("service", "adsdk-mcp")), nil
}

func main() {
	logger, err := newStderrLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	ctx := context.Background()

	cat, err := catalog.LoadFile(cfg.SDK.PatternConfigPath, logger, nil)
	if err != nil {
		logger.Warn("pattern configuration unusable, serving an empty catalog",
			zap.String("path", cfg.SDK.PatternConfigPath), zap.Error(err))
	}

	var counters api.PatternCounter
	store, err := db.InitRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, pattern_click_stats disabled", zap.Error(err))
	} else {
		defer store.Close()
		counters = store
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "adsdk-inspector",
		Version: observability.ServiceVersion,
	}, nil)
	NewInspector(cat, counters, logger).register(server)

	var logBuffer bytes.Buffer
	loggingTransport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    &logBuffer,
	}

	logger.Info("MCP inspector running via stdio",
		zap.Int("patterns", cat.PatternCount()))

	if err := server.Run(ctx, loggingTransport); err != nil {
		logger.Fatal("Server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}

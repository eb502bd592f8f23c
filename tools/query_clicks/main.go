// Command query_clicks prints the clicks stored for one attack pattern.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/patrickwarner/adsdk/internal/analytics"
	"github.com/patrickwarner/adsdk/internal/config"
	"github.com/patrickwarner/adsdk/internal/observability"
)

func main() {
	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var pattern string
	var dsn string
	var limit int
	flag.StringVar(&pattern, "pattern", "", "attack pattern name, as reported in click events")
	flag.StringVar(&dsn, "dsn", "", "ClickHouse DSN")
	flag.IntVar(&limit, "limit", 50, "maximum number of clicks to print")
	flag.Parse()

	if pattern == "" {
		fmt.Fprintln(os.Stderr, "pattern required")
		os.Exit(1)
	}
	if dsn == "" {
		cfg := config.Load()
		dsn = cfg.ClickHouseDSN
	}

	a, err := analytics.InitClickHouse(dsn, 2, 1, 5*time.Minute, 1*time.Minute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect clickhouse: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	clicks, err := a.ClicksByPattern(ctx, pattern, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query clicks: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(clicks); err != nil {
		fmt.Fprintf(os.Stderr, "encode clicks: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"CryptoView/internal/di"
	"CryptoView/pkg/config"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "config file path")
		checkOnly  = flag.Bool("check", false, "validate the config and exit")
	)
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config %s: %v", *configPath, err)
	}
	summary := fmt.Sprintf("env=%s storage=%s top_n=%d analysis_model=%s kafka=%t clickhouse=%t",
		cfg.Environment, cfg.Storage.Backend, cfg.Market.TopN, cfg.Analysis.Model, cfg.Kafka.Enabled, cfg.ClickHouse.Enabled)
	if *checkOnly {
		fmt.Println("config ok:", summary)
		return
	}
	log.Print(summary)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("cryptoview init: %v", err)
	}
	if err := app.Run(); err != nil {
		log.Printf("cryptoview: %v", err)
		os.Exit(1)
	}
}

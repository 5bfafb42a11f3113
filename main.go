package main

import (
	"fmt"
	"os"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/cli"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/config"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	if err := cli.NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

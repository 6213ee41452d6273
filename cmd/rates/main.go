package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"exchange-chat/src/config"
	datasource "exchange-chat/src/data_source"
	"exchange-chat/src/data_source/privatbank"
	"exchange-chat/src/logger"
	"exchange-chat/src/network"
	"exchange-chat/src/utils"

	"github.com/samber/lo"
)

// -----------------------------------------------------------------------------

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file] [-cur USD,EUR] <days>\n\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "Prints PrivatBank rates for today and up to %d past days.\n\n", utils.MaxDays-1)
	flag.PrintDefaults()
}

// -----------------------------------------------------------------------------

func main() {
	configPath := flag.String("config", "", "path to config file (built-in defaults when empty)")
	currencies := flag.String("cur", "", "currency codes, separated by commas (default EUR,USD)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	days, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid days %q: must be a number\n", flag.Arg(0))
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.NewConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	codes := cfg.Rates.DefaultCurrencies
	if *currencies != "" {
		codes = lo.Compact(lo.Map(strings.Split(*currencies, ","), func(code string, _ int) string {
			return strings.TrimSpace(code)
		}))
	}

	// Diagnostics go to stderr so the report stays pipeable.
	log := logger.NewLoggerWithWriter(cfg, "rates", os.Stderr)
	netMgr := network.NewAsyncNetworkManager(cfg.MConfig, log.Named("Network"))
	source := privatbank.NewPrivatBankSource(cfg.MConfig, netMgr, log.Named("PrivatBank"))
	collector := datasource.NewRateCollector(cfg.MConfig, source, log.Named("Collector"))

	days, truncated := collector.ClampDays(days)
	if truncated {
		fmt.Println(utils.MaxDaysWarning)
	}

	report := collector.Collect(context.Background(), days, codes)
	for _, line := range datasource.FormatReport(report) {
		fmt.Println(line)
	}
}

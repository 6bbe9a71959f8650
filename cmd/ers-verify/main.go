package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/in-toto/go-ers"
	"github.com/in-toto/go-ers/config"
	"github.com/in-toto/go-ers/log"
	"github.com/in-toto/go-ers/report"
)

func main() {
	var (
		configPath string
		profile    string
		dataPaths  string
		logLevel   string
		asJSON     bool
	)

	flag.StringVar(&configPath, "config", "", "Path of the YAML configuration file")
	flag.StringVar(&profile, "profile", "", "Validation profile, overrides default-profile of the configuration")
	flag.StringVar(&dataPaths, "data", "", "Comma separated paths of the data protected by the evidence records")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flag.BoolVar(&asJSON, "json", false, "Print the report as JSON")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <evidence-record>...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger, err := log.NewLogrusLogger(os.Stderr, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	log.SetLogger(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	opts, err := cfg.SchedulerOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply configuration: %v\n", err)
		os.Exit(1)
	}

	if profile == "" {
		profile = cfg.DefaultProfile
	}

	var paths []string
	if dataPaths != "" {
		paths = strings.Split(dataPaths, ",")
	}

	protected, err := ers.LoadProtectedData(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	requests := make([]ers.Request, 0, flag.NArg())
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read evidence record: %v\n", err)
			os.Exit(1)
		}

		requests = append(requests, ers.Request{
			Name:          filepath.Base(path),
			Profile:       profile,
			Data:          data,
			ProtectedData: protected,
		})
	}

	rep := ers.NewScheduler(opts...).Validate(context.Background(), requests)
	if asJSON {
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(out))
	} else {
		fmt.Println(rep.String())
	}

	switch rep.Major() {
	case report.Valid:
		os.Exit(0)
	case report.Indeterminate:
		os.Exit(2)
	default:
		os.Exit(1)
	}
}

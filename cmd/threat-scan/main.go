package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phishguard/phishguard/internal/adapters/filter"
	"github.com/phishguard/phishguard/internal/analysis"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/factory"
	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/utils"
)

func main() {
	filePath := flag.String("file", "", "Path to an email file in RFC 822 format (default: stdin)")
	jsonOutput := flag.Bool("json", false, "Output the full assessment as JSON")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	provider := flag.String("classifier", "none", "ML classifier provider (none, bayes, openai, gemini, bedrock)")
	dataset := flag.String("dataset", "", "Training dataset path for the bayes classifier")
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	v := config.NewEmptyViper()
	v.Set("classifier.provider", *provider)
	if *dataset != "" {
		v.Set("bayes.dataset_path", *dataset)
	}
	cfg := config.NewFromViper(v)

	textProcessor := utils.NewTextProcessor(logger)
	classifier, err := factory.CreateTextClassifier(cfg, logger, textProcessor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create classifier: %v\n", err)
		os.Exit(1)
	}

	timeout, err := cfg.GetDuration("classifier.timeout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid classifier timeout: %v\n", err)
		os.Exit(1)
	}

	analyzer := analysis.NewAnalyzer(analysis.DefaultRuleSet(), logger)
	service := core.NewThreatService(analyzer, classifier, nil, nil, logger, timeout)

	var input io.Reader = os.Stdin
	if *filePath != "" {
		f, err := os.Open(*filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open email file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		input = f
	}

	if *jsonOutput {
		email, err := filter.ParseMessage(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse message: %v\n", err)
			os.Exit(1)
		}
		assessment, err := service.Assess(context.Background(), email)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to assess message: %v\n", err)
			os.Exit(1)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(assessment); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode assessment: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cli := filter.NewCLIFilter(service, input, os.Stdout, logger)
	if err := cli.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/cerebro/internal/analyzer"
	"github.com/rxtech-lab/cerebro/internal/cerebro"
	"github.com/rxtech-lab/cerebro/internal/feed"
	"github.com/rxtech-lab/cerebro/internal/logger"
	"github.com/rxtech-lab/cerebro/internal/state"
	"github.com/rxtech-lab/cerebro/internal/strategy"
)

func runAction(ctx context.Context, cmd *cli.Command) error {
	config := cerebro.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		config, err = cerebro.ParseConfig(raw)
		if err != nil {
			return err
		}
	}
	if cash := cmd.Float64("cash"); cash > 0 {
		config.InitialCash = cash
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	engine := cerebro.NewCerebro(config, analyzer.DefaultRegistry(), log)
	engine.AddFeed(feed.NewCSVFeed(cmd.String("symbol"), cmd.String("data")))
	engine.AddStrategy(strategy.NewGoldenCross(
		int(cmd.Int("fast")),
		int(cmd.Int("slow")),
		cmd.Float64("size"),
	))

	for _, name := range analyzer.DefaultRegistry().Names() {
		if err := engine.AddAnalyzer(name); err != nil {
			return err
		}
	}

	var recorder *state.Recorder
	if dir := cmd.String("results"); dir != "" {
		recorder, err = state.NewRecorder(log)
		if err != nil {
			return err
		}
		defer recorder.Close()

		if err := recorder.Initialize(); err != nil {
			return err
		}

		engine.SetRecorder(recorder)
	}

	var bar *progressbar.ProgressBar
	engine.SetProgress(func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total))
		}
		_ = bar.Set(done)
	})

	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(result)

	if recorder != nil {
		dir := cmd.String("results")
		if err := recorder.Write(dir); err != nil {
			return err
		}

		stats := make(map[string]any, len(result.Strategies))
		for _, sr := range result.Strategies {
			stats[sr.StrategyName] = sr.Analyzers
		}

		if err := recorder.WriteStats(dir+"/stats.yaml", stats); err != nil {
			return err
		}
	}

	return nil
}

func printSummary(result *cerebro.RunResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{"Bars", strconv.Itoa(result.Bars)})
	table.Append([]string{"Orders", strconv.Itoa(len(result.Orders))})
	table.Append([]string{"Closed trades", strconv.Itoa(len(result.Trades))})
	table.Append([]string{"Starting cash", fmt.Sprintf("%.2f", result.StartingCash)})
	table.Append([]string{"Final cash", fmt.Sprintf("%.2f", result.FinalCash)})
	table.Append([]string{"Final value", fmt.Sprintf("%.2f", result.FinalValue)})

	for _, sr := range result.Strategies {
		for name, results := range sr.Analyzers {
			for key, value := range results {
				table.Append([]string{
					fmt.Sprintf("%s/%s/%s", sr.StrategyName, name, key),
					fmt.Sprintf("%v", value),
				})
			}
		}
	}

	table.Render()
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := cerebro.DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay OHLCV bars through a golden-cross strategy",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a backtest over a CSV data file",
				Action: runAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "CSV file with time,open,high,low,close,volume columns",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "symbol",
						Aliases: []string{"t"},
						Usage:   "Instrument symbol",
						Value:   "SYMBOL",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "YAML run config",
					},
					&cli.Float64Flag{
						Name:  "cash",
						Usage: "Override the configured initial cash",
					},
					&cli.IntFlag{
						Name:  "fast",
						Usage: "Fast SMA period",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "slow",
						Usage: "Slow SMA period",
						Value: 30,
					},
					&cli.Float64Flag{
						Name:  "size",
						Usage: "Order size in shares",
						Value: 100,
					},
					&cli.StringFlag{
						Name:    "results",
						Aliases: []string{"o"},
						Usage:   "Directory for Parquet records and stats.yaml",
					},
				},
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the run config",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// No config file means defaults, which are all workable.
		return cfg, nil
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithMCP(),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func validate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, err := internal.Validate(ctx, cfg)
	if err != nil {
		return fmt.Errorf("validation pass failed: %w", err)
	}

	if len(res.Report.Violations) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"Severity", "Rule", "File", "Message"})
		for _, v := range res.Report.Violations {
			tw.AppendRow(table.Row{v.Severity, v.RuleID, v.File, v.Message})
		}
		tw.SetStyle(table.StyleLight)
		tw.SortBy([]table.SortBy{{Name: "Severity", Mode: table.Asc}})
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Message", WidthMax: 72},
		})
		tw.Render()
	}

	errs := len(res.Report.Errors())
	warns := len(res.Report.Warnings())
	fmt.Printf("%d documents, %d errors, %d warnings\n", len(res.Assets), errs, warns)

	if res.Report.Failed() {
		return cli.Exit("validation failed", 1)
	}
	fmt.Println("validation passed")
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Documentation vault validator with traceability graph, rule engine, and full-text index",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server with watch mode and live events",
				Action: serve,
			},
			{
				Name:   "validate",
				Usage:  "Run one validation pass and print violations",
				Action: validate,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the vault tools over MCP stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

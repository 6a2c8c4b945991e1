// pricectl queries electricity tariffs from the command line, either
// against the database directly or through a running server (--server).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"electricity-price/internal/app"
	"electricity-price/internal/client"
	"electricity-price/internal/config"
	"electricity-price/internal/export"
	"electricity-price/internal/logging"
	"electricity-price/internal/query"
	"electricity-price/internal/tools"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL string
	verbose   bool
	timeout   time.Duration

	req     query.Request
	outPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pricectl",
	Short: "Query provincial electricity tariffs",
	Long: `pricectl looks up electricity tariffs by region and month.

Without --server it reads MySQL directly using the same MYSQL_* / DATABASE_URL
settings as the server. With --server it calls a running HTTP server instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, false)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Look up tariffs by region, month and electricity type",
	Example: `  pricectl query --region 深圳 --date 2024年12月
  pricectl query --region 浙江 --type1 大工业用电 --server http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, tools.ToolQueryPrices, map[string]any{
			"region_name":       req.RegionName,
			"price_date":        req.PriceDate,
			"electricity_type1": req.ElectricityType1,
			"electricity_type2": req.ElectricityType2,
		})
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List recognised region names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, tools.ToolListRegions, nil)
	},
}

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Write matching tariffs to an Excel workbook",
	Example: `  pricectl export --region 广东 --date 2024-12 --out guangdong.xlsx`,
	Args:    cobra.NoArgs,
	RunE:    runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server base URL, e.g. http://localhost:8080 (default: query MySQL directly)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	for _, c := range []*cobra.Command{queryCmd, exportCmd} {
		c.Flags().StringVarP(&req.RegionName, "region", "r", "", "Region name or alias, e.g. 深圳, 浙江")
		c.Flags().StringVarP(&req.PriceDate, "date", "d", "", "Month, e.g. 2024年12月, 2024-12 or 2024/12")
		c.Flags().StringVar(&req.ElectricityType1, "type1", "", "Primary electricity type description")
		c.Flags().StringVar(&req.ElectricityType2, "type2", "", "Secondary electricity type description")
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "electricity_prices.xlsx", "Output workbook path")

	rootCmd.AddCommand(queryCmd, regionsCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTool(cmd *cobra.Command, name string, args map[string]any) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if serverURL != "" {
		logger.Debug("Calling remote tool", zap.String("server", serverURL), zap.String("tool", name))
		text, err := client.New(serverURL, timeout).CallTool(ctx, name, args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	a, err := app.New(config.Load(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	reply := a.Tools.Call(ctx, name, args)
	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	if reply.IsError() {
		return fmt.Errorf("%s failed", name)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if serverURL != "" {
		return fmt.Errorf("export reads the database directly and does not support --server")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := app.New(config.Load(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	records, hint, err := a.Tools.Lookup(ctx, req)
	if err != nil {
		return err
	}
	if hint != "" {
		fmt.Fprintln(cmd.OutOrStdout(), hint)
		return nil
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	if err := export.Write(records, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "已导出 %d 条记录到 %s\n", len(records), outPath)
	return nil
}

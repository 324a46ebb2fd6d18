package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xhhuango/json"

	"github.com/bcdannyboy/optanalytics/config"
	"github.com/bcdannyboy/optanalytics/tools"
)

type rootArgs struct {
	envFile    string
	configFile string
	logLevel   string
	out        string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	args := &rootArgs{}

	root := &cobra.Command{
		Use:           "optanalytics",
		Short:         "Option pricing, implied volatility and strategy analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&args.envFile, "env-file", "", "dotenv file loaded before reading OPTANALYTICS_* variables")
	root.PersistentFlags().StringVar(&args.configFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&args.logLevel, "log-level", "", "override log.level")
	root.PersistentFlags().StringVarP(&args.out, "out", "o", "", "write the JSON result to this file instead of stdout")

	root.AddCommand(
		newCallCmd(args),
		newBatchCmd(args),
		newToolsCmd(args),
		newChainCmd(args),
	)
	return root
}

// setup loads configuration and builds the dispatcher shared by every
// subcommand.
func setup(args *rootArgs) (*tools.Dispatcher, error) {
	cfg, err := config.Load(args.envFile, args.configFile)
	if err != nil {
		log.Errorf("error loading config: %v", err)
		return nil, err
	}
	if args.logLevel != "" {
		cfg.Log.Level = args.logLevel
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		log.Errorf("error configuring logger: %v", err)
		return nil, err
	}
	logger.SetOutput(os.Stderr)

	return tools.NewDispatcher(cfg, log.NewEntry(logger)), nil
}

func newCallCmd(args *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [params-json]",
		Short: "Run one tool; params are read from stdin when omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, positional []string) error {
			d, err := setup(args)
			if err != nil {
				return err
			}

			params, err := readParams(cmd.InOrStdin(), positional[1:])
			if err != nil {
				log.Errorf("error reading params: %v", err)
				return err
			}

			result, err := d.Dispatch(cmd.Context(), positional[0], params)
			if err != nil {
				log.Errorf("Error: %v", err)
				return err
			}
			return writeResult(cmd.OutOrStdout(), args.out, result)
		},
	}
}

func newBatchCmd(args *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [calls-file]",
		Short: `Run a JSON array of {"tool", "params"} calls concurrently`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			d, err := setup(args)
			if err != nil {
				return err
			}

			var raw []byte
			if len(positional) == 1 {
				raw, err = os.ReadFile(positional[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				log.Errorf("error reading calls: %v", err)
				return err
			}

			var calls []tools.Call
			if err := json.Unmarshal(raw, &calls); err != nil {
				log.Errorf("error decoding calls: %v", err)
				return err
			}
			return writeResult(cmd.OutOrStdout(), args.out, d.DispatchBatch(cmd.Context(), calls))
		},
	}
}

func newToolsCmd(args *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, t := range tools.Tools() {
				fmt.Fprintf(w, "%-26s %s\n", t.Name, t.Description)
			}
			return nil
		},
	}
}

func newChainCmd(args *rootArgs) *cobra.Command {
	var (
		spot float64
		rate float64
		asOf string
	)

	cmd := &cobra.Command{
		Use:   "chain <chain-file>",
		Short: "Implied volatility of every contract in a saved option chain response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			d, err := setup(args)
			if err != nil {
				return err
			}

			chain, err := os.ReadFile(positional[0])
			if err != nil {
				log.Errorf("error reading chain file: %v", err)
				return err
			}

			var ratePtr *float64
			if cmd.Flags().Changed("rate") {
				ratePtr = &rate
			}
			params, err := chainParams(spot, ratePtr, asOf, chain)
			if err != nil {
				return err
			}

			result, err := d.Dispatch(cmd.Context(), tools.ToolChainImpliedVolatility, params)
			if err != nil {
				log.Errorf("Error: %v", err)
				return err
			}
			return writeResult(cmd.OutOrStdout(), args.out, result)
		},
	}
	cmd.Flags().Float64Var(&spot, "spot", 0, "underlying price")
	cmd.Flags().Float64Var(&rate, "rate", 0, "risk-free rate, defaults to the configured rate")
	cmd.Flags().StringVar(&asOf, "as-of", "", "valuation date (YYYY-MM-DD), defaults to now")
	_ = cmd.MarkFlagRequired("spot")
	return cmd
}

func readParams(stdin io.Reader, positional []string) (json.RawMessage, error) {
	if len(positional) == 1 {
		return json.RawMessage(positional[0]), nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(strings.TrimSpace(string(raw))), nil
}

func chainParams(spot float64, rate *float64, asOf string, chain []byte) (json.RawMessage, error) {
	return json.Marshal(struct {
		Spot         float64         `json:"spotPrice"`
		RiskFreeRate *float64        `json:"riskFreeRate,omitempty"`
		AsOf         string          `json:"asOf,omitempty"`
		Chain        json.RawMessage `json:"chain"`
	}{spot, rate, asOf, json.RawMessage(chain)})
}

func writeResult(stdout io.Writer, path string, result any) error {
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Errorf("Failed to marshal result: %v", err)
		return err
	}

	if path == "" {
		_, err = fmt.Fprintln(stdout, string(encoded))
		return err
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		log.Errorf("Error writing to file %s: %v", path, err)
		return err
	}
	log.Infof("Successfully wrote result to %s", path)
	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/krazyTry/lstpool-go/internal/config"
	"github.com/krazyTry/lstpool-go/internal/logging"
	"github.com/krazyTry/lstpool-go/pool"
	"github.com/krazyTry/lstpool-go/quote"
	"github.com/krazyTry/lstpool-go/release"
	"github.com/krazyTry/lstpool-go/shared"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lstquote",
		Short:        "Quote swaps, liquidity and rebalances against an LST pool snapshot",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("snapshot", "", "pool snapshot JSON file")
	root.PersistentFlags().String("release-fraction", release.DefaultReleaseFraction, "fraction of withheld value released within the horizon")
	root.PersistentFlags().Uint64("release-horizon", release.DefaultHorizonSlots, "release horizon in slots")
	root.PersistentFlags().Uint64("rebalance-max-steps", quote.DefaultMaxSteps, "rebalance search bound")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	swapIn := &cobra.Command{
		Use:   "swap-in",
		Short: "Quote an exact-in swap",
		RunE: withPool(func(cmd *cobra.Command, p *pool.Pool) (any, error) {
			in, out, err := mintPair(cmd)
			if err != nil {
				return nil, err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			minOut, _ := cmd.Flags().GetUint64("min-out")
			return p.SwapExactIn(in, out, amount, minOut)
		}),
	}
	swapIn.Flags().String("in", "", "input mint")
	swapIn.Flags().String("out", "", "output mint")
	swapIn.Flags().Uint64("amount", 0, "input amount")
	swapIn.Flags().Uint64("min-out", 0, "minimum output amount")
	root.AddCommand(swapIn)

	swapOut := &cobra.Command{
		Use:   "swap-out",
		Short: "Quote an exact-out swap",
		RunE: withPool(func(cmd *cobra.Command, p *pool.Pool) (any, error) {
			in, out, err := mintPair(cmd)
			if err != nil {
				return nil, err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			maxIn, _ := cmd.Flags().GetUint64("max-in")
			return p.SwapExactOut(in, out, amount, maxIn)
		}),
	}
	swapOut.Flags().String("in", "", "input mint")
	swapOut.Flags().String("out", "", "output mint")
	swapOut.Flags().Uint64("amount", 0, "output amount")
	swapOut.Flags().Uint64("max-in", shared.U64Max, "maximum input amount")
	root.AddCommand(swapOut)

	addLiquidity := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Quote lp tokens minted for a deposit",
		RunE: withPool(func(cmd *cobra.Command, p *pool.Pool) (any, error) {
			in, err := mintFlag(cmd, "in")
			if err != nil {
				return nil, err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			minLp, _ := cmd.Flags().GetUint64("min-lp")
			return p.AddLiquidity(in, amount, minLp)
		}),
	}
	addLiquidity.Flags().String("in", "", "deposit mint")
	addLiquidity.Flags().Uint64("amount", 0, "deposit amount")
	addLiquidity.Flags().Uint64("min-lp", 0, "minimum lp tokens")
	root.AddCommand(addLiquidity)

	removeLiquidity := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Quote a withdrawal for burned lp tokens",
		RunE: withPool(func(cmd *cobra.Command, p *pool.Pool) (any, error) {
			out, err := mintFlag(cmd, "out")
			if err != nil {
				return nil, err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			minOut, _ := cmd.Flags().GetUint64("min-out")
			return p.RemoveLiquidity(out, amount, minOut)
		}),
	}
	removeLiquidity.Flags().String("out", "", "withdrawal mint")
	removeLiquidity.Flags().Uint64("amount", 0, "lp tokens to burn")
	removeLiquidity.Flags().Uint64("min-out", 0, "minimum output amount")
	root.AddCommand(removeLiquidity)

	rebalance := &cobra.Command{
		Use:   "rebalance",
		Short: "Quote the least input that replaces value taken out",
		RunE: withPool(func(cmd *cobra.Command, p *pool.Pool) (any, error) {
			in, out, err := mintPair(cmd)
			if err != nil {
				return nil, err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			return p.Rebalance(out, in, amount)
		}),
	}
	rebalance.Flags().String("in", "", "mint paid in")
	rebalance.Flags().String("out", "", "mint taken out")
	rebalance.Flags().Uint64("amount", 0, "amount taken out")
	root.AddCommand(rebalance)

	sync := &cobra.Command{
		Use:   "sync",
		Short: "Re-value entries at current reserves",
		RunE: withPool(func(_ *cobra.Command, p *pool.Pool) (any, error) {
			res, err := p.SyncValues()
			if err != nil {
				return nil, err
			}
			skipped := make([]skippedJSON, 0, len(res.Skipped))
			for _, s := range res.Skipped {
				skipped = append(skipped, skippedJSON{Mint: s.Mint.String(), Error: s.Err.Error()})
			}
			return syncJSON{Ledger: res.Ledger, Entries: res.Entries, Skipped: skipped}, nil
		}),
	}
	root.AddCommand(sync)

	releaseCmd := &cobra.Command{
		Use:   "release",
		Short: "Release withheld value over elapsed slots",
		RunE:  runRelease,
	}
	releaseCmd.Flags().Uint64("withheld", 0, "withheld value")
	releaseCmd.Flags().Uint64("elapsed", 0, "elapsed slots")
	releaseCmd.Flags().String("rate", "", "per-slot release rate, configured default when empty")
	root.AddCommand(releaseCmd)

	defaultRate := &cobra.Command{
		Use:   "default-rate",
		Short: "Print the release rate derived from fraction and horizon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			rate, err := cfg.ReleaseRate()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rateView(rate, cfg))
		},
	}
	root.AddCommand(defaultRate)

	return root
}

func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// withPool loads the configured snapshot and writes run's result as JSON.
func withPool(run func(*cobra.Command, *pool.Pool) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cfg.Snapshot == "" {
			return errors.New("snapshot is required")
		}
		data, err := os.ReadFile(cfg.Snapshot)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		rate, err := cfg.ReleaseRate()
		if err != nil {
			return err
		}
		snapshot, err := pool.LoadSnapshot(data, rate)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		p, err := pool.New(snapshot, pool.WithLogger(logger), pool.WithRebalanceMaxSteps(cfg.RebalanceMaxSteps))
		if err != nil {
			return err
		}

		out, err := run(cmd, p)
		if err != nil {
			logger.Info("quote refused", zap.String("command", cmd.Name()), zap.Error(err))
			if werr := writeJSON(cmd.OutOrStdout(), errorView(err)); werr != nil {
				return werr
			}
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}
}

func runRelease(cmd *cobra.Command, _ []string) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}
	withheld, _ := cmd.Flags().GetUint64("withheld")
	elapsed, _ := cmd.Flags().GetUint64("elapsed")
	rateFlag, _ := cmd.Flags().GetString("rate")

	var rate release.Rate
	if rateFlag == "" {
		rate, err = cfg.ReleaseRate()
	} else {
		var d decimal.Decimal
		if d, err = decimal.NewFromString(rateFlag); err == nil {
			rate, err = release.RateFromDecimal(d)
		}
	}
	if err != nil {
		return err
	}
	split, err := release.Release(withheld, rate, elapsed)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), struct {
		Rate     string
		Released uint64
		Withheld uint64
	}{rate.String(), split.Fee, split.Remainder})
}

func mintFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %w", name, err)
	}
	return key, nil
}

func mintPair(cmd *cobra.Command) (in, out solana.PublicKey, err error) {
	if in, err = mintFlag(cmd, "in"); err != nil {
		return
	}
	out, err = mintFlag(cmd, "out")
	return
}

type rateJSON struct {
	Fraction string
	Horizon  uint64
	Rate     string
	Raw      string
}

func rateView(rate release.Rate, cfg config.Config) rateJSON {
	return rateJSON{
		Fraction: cfg.ReleaseFraction,
		Horizon:  cfg.ReleaseHorizon,
		Rate:     rate.String(),
		Raw:      rate.FixedRatio().Num().String(),
	}
}

type skippedJSON struct {
	Mint  string
	Error string
}

type syncJSON struct {
	Ledger  shared.PoolLedger
	Entries []shared.TokenEntry
	Skipped []skippedJSON
}

type errorJSON struct {
	Error string
	Code  uint32
	Name  string
}

func errorView(err error) errorJSON {
	code := shared.CodeOf(err)
	return errorJSON{Error: err.Error(), Code: uint32(code), Name: code.String()}
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

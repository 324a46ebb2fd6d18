package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/xhhuango/json"
	"golang.org/x/sync/errgroup"

	"github.com/bcdannyboy/optanalytics/config"
)

var (
	ErrUnknownTool   = errors.New("unknown tool")
	ErrInvalidParams = errors.New("invalid params")
)

const (
	ToolPriceOption            = "price_option"
	ToolImpliedVolatility      = "implied_volatility"
	ToolBuildStrategy          = "build_strategy"
	ToolStrategyPayoff         = "strategy_payoff"
	ToolAnalyzeStrategy        = "analyze_strategy"
	ToolStrategyGreeks         = "strategy_greeks"
	ToolSimulateStrategy       = "simulate_strategy"
	ToolChainImpliedVolatility = "chain_implied_volatility"
	ToolHistoricalVolatility   = "historical_volatility"
)

type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var catalog = []Tool{
	{ToolPriceOption, "Black-Scholes price and Greeks of a European option"},
	{ToolImpliedVolatility, "Newton-Raphson implied volatility from a market price"},
	{ToolBuildStrategy, "Expand a named strategy into its legs"},
	{ToolStrategyPayoff, "Intrinsic P&L curve of a strategy around the spot price"},
	{ToolAnalyzeStrategy, "Max profit, max loss, breakevens and net premium at expiry"},
	{ToolStrategyGreeks, "Net Black-Scholes Greeks of a strategy"},
	{ToolSimulateStrategy, "Monte Carlo probability of profit, VaR and expected shortfall"},
	{ToolChainImpliedVolatility, "Implied volatility of every contract in an option chain payload"},
	{ToolHistoricalVolatility, "Annualized historical volatility from daily OHLC bars"},
}

// Tools lists the tools Dispatch understands.
func Tools() []Tool {
	out := make([]Tool, len(catalog))
	copy(out, catalog)
	return out
}

// Dispatcher routes tool calls to the engine. It holds no mutable state and
// is safe for concurrent use.
type Dispatcher struct {
	cfg      config.Config
	log      *logrus.Entry
	validate *validator.Validate
	now      func() time.Time
}

func NewDispatcher(cfg config.Config, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Dispatch decodes params for the named tool, runs it and returns a value
// ready for JSON encoding.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params json.RawMessage) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	log := d.log.WithField("tool", name)

	out, err := d.dispatch(ctx, log, name, params)
	log = log.WithField("elapsed", time.Since(start))
	if err != nil {
		log.WithError(err).Error("tool call failed")
		return nil, err
	}
	log.Debug("tool call complete")
	return out, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, log *logrus.Entry, name string, params json.RawMessage) (any, error) {
	switch name {
	case ToolPriceOption:
		var req PriceOptionRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.priceOption(req)
	case ToolImpliedVolatility:
		var req ImpliedVolatilityRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.impliedVolatility(log, req)
	case ToolBuildStrategy:
		var req StrategyRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.buildStrategy(req)
	case ToolStrategyPayoff:
		var req StrategyPayoffRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.strategyPayoff(req)
	case ToolAnalyzeStrategy:
		var req AnalyzeStrategyRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.analyzeStrategy(req)
	case ToolStrategyGreeks:
		var req StrategyGreeksRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.strategyGreeks(req)
	case ToolSimulateStrategy:
		var req SimulateStrategyRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.simulateStrategy(ctx, req)
	case ToolChainImpliedVolatility:
		var req ChainImpliedVolatilityRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.chainImpliedVolatility(log, req)
	case ToolHistoricalVolatility:
		var req HistoricalVolatilityRequest
		if err := d.decode(params, &req); err != nil {
			return nil, err
		}
		return d.historicalVolatility(req)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// decode rejects unknown fields so that typos do not silently fall back to
// defaults.
func (d *Dispatcher) decode(params json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(params)) == 0 {
		params = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := d.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

type Call struct {
	Tool   string          `json:"tool"`
	Params json.RawMessage `json:"params"`
}

type Result struct {
	Tool   string `json:"tool"`
	Output any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DispatchBatch runs independent calls concurrently, at most
// Simulation.Workers at a time. A failed call is reported in its Result and
// does not stop the others. Results keep the order of calls.
func (d *Dispatcher) DispatchBatch(ctx context.Context, calls []Call) []Result {
	results := make([]Result, len(calls))

	limit := d.cfg.Simulation.Workers
	if limit < 1 {
		limit = -1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			out, err := d.Dispatch(ctx, call.Tool, call.Params)
			results[i] = Result{Tool: call.Tool, Output: out}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

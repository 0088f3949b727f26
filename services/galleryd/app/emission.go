package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"mosaicchain/native/gallery"
)

// Communities lists the symbols of every community point.
func (a *App) Communities() ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.communities()
}

func (a *App) communities() ([]string, error) {
	currencies, err := a.state.PointCurrencies()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(currencies))
	for _, cur := range currencies {
		out = append(out, cur.Symbol)
	}
	return out, nil
}

// Tick runs whichever emissions of the community are due and returns the
// reward ticks they produced.
func (a *App) Tick(ctx context.Context, symbol string) ([]*gallery.TickResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.run(ctx, func() error {
		if err := a.Emission.MaybeIssue(symbol); err != nil {
			return fmt.Errorf("mosaic emission: %w", err)
		}
		if err := a.Emission.MaybeIssueLeaders(symbol); err != nil {
			return fmt.Errorf("leader emission: %w", err)
		}
		return nil
	})
}

// TickAll runs the due emissions of every community. A failing community
// is logged and does not stop the others.
func (a *App) TickAll(ctx context.Context) {
	symbols, err := a.Communities()
	if err != nil {
		a.logger.Error("list communities", "error", err)
		return
	}
	for _, symbol := range symbols {
		ticks, err := a.Tick(ctx, symbol)
		if err != nil {
			a.logger.Error("emission tick failed", "community", symbol, "error", err)
			continue
		}
		for _, t := range ticks {
			a.logger.Info("reward tick",
				"community", symbol,
				"amount", t.Amount,
				"winners", len(t.Allocations),
				"unclaimed", t.Unclaimed,
			)
		}
	}
}

// StartEmission schedules TickAll on a cron spec such as "@every 1m". The
// caller stops the returned scheduler.
func (a *App) StartEmission(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { a.TickAll(ctx) }); err != nil {
		return nil, fmt.Errorf("emission schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

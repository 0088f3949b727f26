package app

import (
	"context"
	"errors"
	"fmt"

	"mosaicchain/config"
	"mosaicchain/native/point"
)

var genesisKey = []byte("galleryd/genesis")

// ErrAlreadyBootstrapped is returned when genesis was applied before.
var ErrAlreadyBootstrapped = errors.New("galleryd: genesis already applied")

// Bootstrapped reports whether a genesis has been applied to the state.
func (a *App) Bootstrapped() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.KVGet(genesisKey, nil)
}

// Bootstrap applies a genesis document in a single operation. Engine clocks
// start at GenesisTime when it is set.
func (a *App) Bootstrap(ctx context.Context, g *config.Genesis) error {
	if err := config.Validate(g); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if ok, err := a.state.KVGet(genesisKey, nil); err != nil {
		return err
	} else if ok {
		return ErrAlreadyBootstrapped
	}
	a.pinnedAt = g.GenesisTime
	defer func() { a.pinnedAt = 0 }()
	_, err := a.run(ctx, func() error {
		for _, d := range g.Reserve {
			if err := a.Points.Deposit(d.Account, d.Amount); err != nil {
				return fmt.Errorf("reserve %s: %w", d.Account, err)
			}
		}
		for i := range g.Communities {
			if err := a.applyCommunity(&g.Communities[i]); err != nil {
				return fmt.Errorf("community %s: %w", g.Communities[i].Symbol, err)
			}
		}
		return a.state.KVPut(genesisKey, uint64(g.GenesisTime))
	})
	return err
}

func (a *App) applyCommunity(c *config.Community) error {
	cfg, err := c.CommunityParams()
	if err != nil {
		return err
	}
	if err := a.Params.SetCommunity(cfg); err != nil {
		return err
	}
	if err := a.Points.Create(point.CreateParams{
		Symbol:         c.Symbol,
		Issuer:         c.Issuer,
		InitialSupply:  c.InitialSupply,
		InitialReserve: c.InitialReserve,
		MaxSupply:      c.MaxSupply,
		CW:             c.CW,
		Fee:            c.Fee,
	}); err != nil {
		return err
	}
	symbol := cfg.Symbol
	if err := a.Gallery.Init(symbol); err != nil {
		return err
	}
	if err := a.Emission.Create(symbol); err != nil {
		return err
	}
	if err := a.Control.Init(symbol); err != nil {
		return err
	}
	for _, b := range c.Balances {
		if err := a.Points.Transfer(symbol, c.Issuer, b.Account, b.Amount); err != nil {
			return fmt.Errorf("balance %s: %w", b.Account, err)
		}
	}
	if c.TransferFee > 0 {
		if err := a.Points.SetParams(symbol, c.Issuer, c.TransferFee, c.MinTransferFeePoints); err != nil {
			return err
		}
	}
	for _, l := range c.Leaders {
		if err := a.Control.RegLeader(symbol, l.Account, l.URL); err != nil {
			return fmt.Errorf("leader %s: %w", l.Account, err)
		}
	}
	for _, v := range c.Votes {
		pct := v.Pct
		if err := a.Control.Vote(symbol, v.Voter, v.Leader, &pct); err != nil {
			return fmt.Errorf("vote %s for %s: %w", v.Voter, v.Leader, err)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
)

// MaxLeaderURL bounds the URL a leader candidate may register.
const MaxLeaderURL = 256

// Validate checks a genesis document for consistency before it is applied.
func Validate(g *Genesis) error {
	if g == nil {
		return fmt.Errorf("genesis: nil document")
	}
	if g.GenesisTime < 0 {
		return fmt.Errorf("genesis: negative genesis time")
	}
	for i, d := range g.Reserve {
		if strings.TrimSpace(d.Account) == "" || d.Amount <= 0 {
			return fmt.Errorf("genesis: reserve[%d]: account and positive amount required", i)
		}
	}
	symbols := make(map[string]struct{}, len(g.Communities))
	issuers := make(map[string]string, len(g.Communities))
	for i := range g.Communities {
		c := &g.Communities[i]
		symbol := strings.ToUpper(strings.TrimSpace(c.Symbol))
		if symbol == "" {
			return fmt.Errorf("genesis: communities[%d]: symbol required", i)
		}
		if _, dup := symbols[symbol]; dup {
			return fmt.Errorf("genesis: duplicate community %s", symbol)
		}
		symbols[symbol] = struct{}{}
		if other, dup := issuers[c.Issuer]; dup {
			return fmt.Errorf("genesis: %s issues both %s and %s", c.Issuer, other, symbol)
		}
		issuers[c.Issuer] = symbol
		if err := validateCommunity(c); err != nil {
			return fmt.Errorf("genesis: %s: %w", symbol, err)
		}
	}
	return nil
}

func validateCommunity(c *Community) error {
	if strings.TrimSpace(c.Issuer) == "" {
		return fmt.Errorf("issuer required")
	}
	if c.MaxSupply <= 0 || c.InitialSupply < 0 || c.InitialSupply > c.MaxSupply {
		return fmt.Errorf("supply %d outside (0, %d]", c.InitialSupply, c.MaxSupply)
	}
	if (c.InitialSupply == 0) != (c.InitialReserve == 0) {
		return fmt.Errorf("initial supply and reserve must both be set")
	}
	var paid int64
	for _, b := range c.Balances {
		if strings.TrimSpace(b.Account) == "" || b.Amount <= 0 {
			return fmt.Errorf("balance: account and positive amount required")
		}
		paid += b.Amount
	}
	if paid > c.InitialSupply {
		return fmt.Errorf("balances total %d exceeds initial supply %d", paid, c.InitialSupply)
	}
	leaders := make(map[string]struct{}, len(c.Leaders))
	for _, l := range c.Leaders {
		if strings.TrimSpace(l.Account) == "" {
			return fmt.Errorf("leader account required")
		}
		if len(l.URL) > MaxLeaderURL {
			return fmt.Errorf("leader %s: url too long", l.Account)
		}
		if _, dup := leaders[l.Account]; dup {
			return fmt.Errorf("duplicate leader %s", l.Account)
		}
		leaders[l.Account] = struct{}{}
	}
	for _, v := range c.Votes {
		if _, ok := leaders[v.Leader]; !ok {
			return fmt.Errorf("vote for unknown leader %s", v.Leader)
		}
		if v.Pct == 0 || v.Pct > 10000 {
			return fmt.Errorf("vote of %s: pct %d outside (0, 10000]", v.Voter, v.Pct)
		}
	}
	if _, err := c.CommunityParams(); err != nil {
		return err
	}
	return nil
}

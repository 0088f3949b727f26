package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleGenesis = `
GenesisTime = 1700000000

[[Reserve]]
Account = "alice"
Amount = 5000

[[Communities]]
Symbol = "golos"
Issuer = "golos-issuer"
MaxSupply = 1000000000
InitialSupply = 1000000
InitialReserve = 500000
CW = 5000
Fee = 100

  [Communities.Params]
  CollectionPeriod = 86400
  RewardedMosaicNum = 5
  LeadGrades = [1000, 500]

    [[Communities.Params.Opuses]]
    Name = "post"
    MinMosaicInclusion = 10

    [[Communities.Params.Opuses]]
    Name = "comment"

  [[Communities.Balances]]
  Account = "alice"
  Amount = 1000

  [[Communities.Leaders]]
  Account = "lead1"
  URL = "https://lead1.example"

  [[Communities.Votes]]
  Voter = "alice"
  Leader = "lead1"
  Pct = 5000
`

func TestLoadGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.toml")
	if err := os.WriteFile(path, []byte(sampleGenesis), 0o600); err != nil {
		t.Fatalf("write genesis: %v", err)
	}
	g, err := LoadGenesis(path)
	if err != nil {
		t.Fatalf("load genesis: %v", err)
	}
	if g.GenesisTime != 1_700_000_000 || len(g.Reserve) != 1 || len(g.Communities) != 1 {
		t.Fatalf("unexpected genesis: %+v", g)
	}
	c := g.Communities[0]
	if c.CW != 5000 || len(c.Balances) != 1 || len(c.Leaders) != 1 || len(c.Votes) != 1 {
		t.Fatalf("unexpected community: %+v", c)
	}

	cfg, err := c.CommunityParams()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if cfg.Symbol != "GOLOS" || cfg.CollectionPeriod != 86400 || cfg.RewardedMosaicNum != 5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.LeadGrades) != 2 || cfg.LeadGrades[1] != 500 {
		t.Fatalf("unexpected lead grades: %v", cfg.LeadGrades)
	}
	if cfg.ModerationPeriod != 10*86400 || cfg.MaxVotes != 5 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	post, err := cfg.Opus("post")
	if err != nil || post.MinMosaicInclusion != 10 {
		t.Fatalf("unexpected post opus: %+v %v", post, err)
	}
}

func TestParseGenesisRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "unknown top level key",
			mutate:  func(s string) string { return "Chain = \"x\"\n" + s },
			wantErr: "unknown key",
		},
		{
			name:    "unknown parameter",
			mutate:  func(s string) string { return strings.Replace(s, "RewardedMosaicNum = 5", "RewardedMosaics = 5", 1) },
			wantErr: "unknown key",
		},
		{
			name:    "balances exceed supply",
			mutate:  func(s string) string { return strings.Replace(s, "Amount = 1000\n", "Amount = 2000000\n", 1) },
			wantErr: "exceeds initial supply",
		},
		{
			name:    "vote for unknown leader",
			mutate:  func(s string) string { return strings.Replace(s, "Leader = \"lead1\"", "Leader = \"lead9\"", 1) },
			wantErr: "unknown leader",
		},
		{
			name:    "reserve without supply",
			mutate:  func(s string) string { return strings.Replace(s, "InitialSupply = 1000000", "InitialSupply = 0", 1) },
			wantErr: "both be set",
		},
		{
			name:    "invalid parameters",
			mutate:  func(s string) string { return strings.Replace(s, "RewardedMosaicNum = 5", "RewardedMosaicNum = 0", 1) },
			wantErr: "params",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGenesis([]byte(tt.mutate(sampleGenesis)))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDuplicateCommunities(t *testing.T) {
	g := &Genesis{Communities: []Community{
		{Symbol: "CATS", Issuer: "a", MaxSupply: 10},
		{Symbol: "cats", Issuer: "b", MaxSupply: 10},
	}}
	if err := Validate(g); err == nil || !strings.Contains(err.Error(), "duplicate community") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

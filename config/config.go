package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"mosaicchain/native/params"
)

// LoadGenesis reads and validates a TOML genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis: %w", err)
	}
	return ParseGenesis(raw)
}

// ParseGenesis decodes a TOML genesis document. Unknown keys are rejected.
func ParseGenesis(data []byte) (*Genesis, error) {
	g := &Genesis{}
	meta, err := toml.Decode(string(data), g)
	if err != nil {
		return nil, fmt.Errorf("decode genesis: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("genesis: unknown key %q", undecoded[0].String())
	}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// CommunityParams resolves the parameters of a community: the defaults
// with the genesis overrides applied.
func (c *Community) CommunityParams() (*params.Community, error) {
	cfg := params.Defaults(c.Symbol)
	if len(c.Params) > 0 {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c.Params); err != nil {
			return nil, fmt.Errorf("genesis: %s params: %w", c.Symbol, err)
		}
		meta, err := toml.Decode(buf.String(), cfg)
		if err != nil {
			return nil, fmt.Errorf("genesis: %s params: %w", c.Symbol, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("genesis: %s params: unknown key %q", c.Symbol, undecoded[0].String())
		}
	}
	cfg.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %s params: %w", c.Symbol, err)
	}
	return cfg, nil
}

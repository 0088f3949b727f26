package config

// Genesis seeds a fresh state: reserve deposits, communities with their
// points and parameters, opening balances, leaders and votes.
type Genesis struct {
	// GenesisTime is the unix time every community's clocks start from.
	GenesisTime int64       `toml:"GenesisTime"`
	Reserve     []Deposit   `toml:"Reserve"`
	Communities []Community `toml:"Communities"`
}

// Deposit credits reserve currency to an account.
type Deposit struct {
	Account string `toml:"Account"`
	Amount  int64  `toml:"Amount"`
}

// Community describes one community point and its gallery.
type Community struct {
	Symbol               string `toml:"Symbol"`
	Issuer               string `toml:"Issuer"`
	MaxSupply            int64  `toml:"MaxSupply"`
	InitialSupply        int64  `toml:"InitialSupply"`
	InitialReserve       int64  `toml:"InitialReserve"`
	CW                   uint16 `toml:"CW"`
	Fee                  uint16 `toml:"Fee"`
	TransferFee          uint16 `toml:"TransferFee"`
	MinTransferFeePoints int64  `toml:"MinTransferFeePoints"`

	// Params overrides individual community parameters; unset keys keep
	// their defaults.
	Params map[string]interface{} `toml:"Params"`

	// Balances are paid out of the issuer's initial supply.
	Balances []Deposit `toml:"Balances"`
	Leaders  []Leader  `toml:"Leaders"`
	Votes    []Vote    `toml:"Votes"`
}

// Leader registers a leader candidate.
type Leader struct {
	Account string `toml:"Account"`
	URL     string `toml:"URL"`
}

// Vote backs a leader with a share of the voter's balance, in basis points.
type Vote struct {
	Voter  string `toml:"Voter"`
	Leader string `toml:"Leader"`
	Pct    uint16 `toml:"Pct"`
}

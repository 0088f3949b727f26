package params

import (
	"fmt"
	"strings"

	coreerrors "mosaicchain/core/errors"
)

const (
	// Denominator is the basis-point scale shared by every percentage field.
	Denominator = 10_000

	day = int64(24 * 60 * 60)
)

var (
	ErrCommunityNotFound = coreerrors.New(coreerrors.KindNotFound, "params: community not configured")
	ErrInvalidParams     = coreerrors.New(coreerrors.KindValidation, "params: invalid community parameters")
	ErrUnknownOpus       = coreerrors.New(coreerrors.KindValidation, "params: unknown opus")
)

// Opus describes one kind of artifact a community accepts, with its minimum
// stakes.
type Opus struct {
	Name               string `json:"name"`
	MinMosaicInclusion int64  `json:"minMosaicInclusion"`
	MinGemInclusion    int64  `json:"minGemInclusion"`
	// MinMosaicCost is the reserve-currency value the opening stake must be
	// worth. Zero disables the check.
	MinMosaicCost int64 `json:"minMosaicCost"`
	// MosaicPledge is locked from the first stakes of a mosaic until their
	// gems are chopped. Pledged points earn no shares.
	MosaicPledge int64 `json:"mosaicPledge"`
}

// Community holds the per-community knobs of the gallery, ranking and
// emission engines. Periods are in seconds, percentages in basis points.
type Community struct {
	Symbol string `json:"symbol"`

	CollectionPeriod  int64 `json:"collectionPeriod"`
	ModerationPeriod  int64 `json:"moderationPeriod"`
	ExtraRewardPeriod int64 `json:"extraRewardPeriod"`

	AuthorPercent          uint16 `json:"authorPercent"`
	RewardedMosaicNum      int    `json:"rewardedMosaicNum"`
	MinLeadRating          int64  `json:"minLeadRating"`
	DamnedGemRewardEnabled bool   `json:"damnedGemRewardEnabled"`
	RefillGemEnabled       bool   `json:"refillGemEnabled"`

	MaxProviders        int   `json:"maxProviders"`
	AutoClaimNum        int   `json:"autoClaimNum"`
	ForcedChoppingDelay int64 `json:"forcedChoppingDelay"`

	CommGrades         []int64 `json:"commGrades"`
	CommPointsGradeSum int64   `json:"commPointsGradeSum"`
	LeadGrades         []int64 `json:"leadGrades"`
	AdviceWeights      []int64 `json:"adviceWeights"`

	EmissionRate        uint16 `json:"emissionRate"`
	LeadersPercent      uint16 `json:"leadersPercent"`
	MosaicRewardPeriod  int64  `json:"mosaicRewardPeriod"`
	LeadersRewardPeriod int64  `json:"leadersRewardPeriod"`

	// LeadersNum is how many top voted leaders govern the community.
	LeadersNum int `json:"leadersNum"`
	// MaxVotes caps the leaders one voter may back at once.
	MaxVotes int `json:"maxVotes"`

	// GemsPerDay sizes automatic stakes: a message or vote without an
	// explicit weight freezes the balance divided by the gems one could
	// open over a mosaic's active period.
	GemsPerDay int64 `json:"gemsPerDay"`

	Opuses []Opus `json:"opuses"`
}

// Defaults returns the stock parameter set for a new community.
func Defaults(symbol string) *Community {
	return &Community{
		Symbol:              strings.ToUpper(strings.TrimSpace(symbol)),
		CollectionPeriod:    7 * day,
		ModerationPeriod:    10 * day,
		AuthorPercent:       Denominator,
		RewardedMosaicNum:   20,
		MaxProviders:        7,
		AutoClaimNum:        3,
		ForcedChoppingDelay: 30 * day,
		CommGrades: []int64{
			1000, 1000, 1000, 500, 500, 300, 300, 300, 300, 300,
			100, 100, 100, 100, 100, 50, 50, 50, 50, 50,
		},
		CommPointsGradeSum:  5000,
		LeadGrades:          []int64{1000, 500, 300, 200},
		AdviceWeights:       []int64{1000, 500, 333, 250, 200},
		EmissionRate:        2000,
		LeadersPercent:      1000,
		MosaicRewardPeriod:  60 * 60,
		LeadersRewardPeriod: day,
		LeadersNum:          5,
		MaxVotes:            5,
		GemsPerDay:          10,
		Opuses: []Opus{
			{Name: "post"},
			{Name: "comment"},
		},
	}
}

// Opus returns the named opus.
func (c *Community) Opus(name string) (Opus, error) {
	for _, op := range c.Opuses {
		if op.Name == name {
			return op, nil
		}
	}
	return Opus{}, fmt.Errorf("%w: %q in %s", ErrUnknownOpus, name, c.Symbol)
}

// ClaimDelay is the time after collection end before gems become claimable
// without forfeiting reward.
func (c *Community) ClaimDelay() int64 {
	return c.ModerationPeriod + c.ExtraRewardPeriod
}

// ActivePeriod is the lifetime of a mosaic from creation to claim date.
func (c *Community) ActivePeriod() int64 {
	return c.CollectionPeriod + c.ModerationPeriod + c.ExtraRewardPeriod
}

// RewardPeriod returns the minimum spacing between emissions for the given
// receiver.
func (c *Community) RewardPeriod(forLeaders bool) int64 {
	if forLeaders {
		return c.LeadersRewardPeriod
	}
	return c.MosaicRewardPeriod
}

// Validate checks internal consistency.
func (c *Community) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
	}
	if strings.TrimSpace(c.Symbol) == "" {
		return invalid("symbol required")
	}
	if c.CollectionPeriod <= 0 || c.ModerationPeriod < 0 || c.ExtraRewardPeriod < 0 {
		return invalid("periods must be non-negative and collection positive")
	}
	if c.AuthorPercent > Denominator || c.EmissionRate > Denominator || c.LeadersPercent > Denominator {
		return invalid("percentages exceed %d", Denominator)
	}
	if c.RewardedMosaicNum <= 0 {
		return invalid("rewardedMosaicNum must be positive")
	}
	if c.MaxProviders < 0 || c.AutoClaimNum < 0 || c.ForcedChoppingDelay < 0 {
		return invalid("eviction limits must be non-negative")
	}
	if len(c.AdviceWeights) == 0 {
		return invalid("adviceWeights must not be empty")
	}
	for name, grades := range map[string][]int64{
		"commGrades":    c.CommGrades,
		"leadGrades":    c.LeadGrades,
		"adviceWeights": c.AdviceWeights,
	} {
		for _, g := range grades {
			if g < 0 {
				return invalid("%s must be non-negative", name)
			}
		}
	}
	if c.CommPointsGradeSum < 0 || c.MinLeadRating < 0 {
		return invalid("grade sum and lead rating must be non-negative")
	}
	if c.MosaicRewardPeriod < 0 || c.LeadersRewardPeriod < 0 {
		return invalid("reward periods must be non-negative")
	}
	if c.LeadersNum <= 0 || c.MaxVotes <= 0 || c.GemsPerDay <= 0 {
		return invalid("leadersNum, maxVotes and gemsPerDay must be positive")
	}
	seen := make(map[string]struct{}, len(c.Opuses))
	for _, op := range c.Opuses {
		if op.Name == "" {
			return invalid("opus name required")
		}
		if _, dup := seen[op.Name]; dup {
			return invalid("duplicate opus %q", op.Name)
		}
		seen[op.Name] = struct{}{}
		if op.MinMosaicInclusion < 0 || op.MinGemInclusion < 0 || op.MinMosaicCost < 0 || op.MosaicPledge < 0 {
			return invalid("opus %q minimums must be non-negative", op.Name)
		}
	}
	return nil
}

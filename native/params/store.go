package params

import (
	"bytes"
	"encoding/json"
	"fmt"

	coreerrors "mosaicchain/core/errors"
)

// StoreState captures the subset of state manager capabilities required by the
// parameter helpers.
type StoreState interface {
	ParamStoreSet(name string, value []byte) error
	ParamStoreGet(name string) ([]byte, bool, error)
}

// Store reads and writes community parameters. It holds no cache: each call
// goes to state, so an operation sees the parameters current at its start.
type Store struct {
	state StoreState
}

// NewStore constructs a parameter store wrapper using the supplied state
// backend.
func NewStore(state StoreState) *Store {
	return &Store{state: state}
}

func (s *Store) withState() (StoreState, error) {
	if s == nil || s.state == nil {
		return nil, coreerrors.New(coreerrors.KindInvariantViolation, "params: state not configured")
	}
	return s.state, nil
}

// SetCommunity validates and persists a community's parameters as JSON.
func (s *Store) SetCommunity(c *Community) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: nil community", ErrInvalidParams)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	encoded, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("params: encode %s: %w", c.Symbol, err)
	}
	return state.ParamStoreSet(communityKey(c.Symbol), encoded)
}

// Community loads the parameters of symbol.
func (s *Store) Community(symbol string) (*Community, error) {
	state, err := s.withState()
	if err != nil {
		return nil, err
	}
	raw, ok, err := state.ParamStoreGet(communityKey(symbol))
	if err != nil {
		return nil, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCommunityNotFound, symbol)
	}
	var c Community
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("params: decode %s: %w", symbol, err)
	}
	return &c, nil
}

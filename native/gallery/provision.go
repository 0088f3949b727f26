package gallery

import (
	"fmt"
	"strings"

	"mosaicchain/native/params"
)

// ProvidePoints creates, tops up or removes the provision from grantor to
// recipient. A zero amount with no fee removes an existing provision.
func (e *Engine) ProvidePoints(symbol, grantor, recipient string, amount int64, fee *uint16) error {
	o, err := e.begin(symbol)
	if err != nil {
		return err
	}
	grantor = strings.TrimSpace(grantor)
	recipient = strings.TrimSpace(recipient)
	if grantor == "" || recipient == "" {
		return ErrInvalidAccount
	}
	if grantor == recipient {
		return ErrSelfProvision
	}
	if fee != nil && *fee > params.Denominator {
		return fmt.Errorf("%w: %d", ErrInvalidFee, *fee)
	}
	prov, exists, err := e.state.GalleryProvisionGet(o.symbol, grantor, recipient)
	if err != nil {
		return err
	}
	enable := amount != 0 || fee != nil

	switch {
	case exists && enable:
		if prov.Total+amount < prov.Frozen {
			return fmt.Errorf("%w: total %d, frozen %d", ErrInvalidProvision, prov.Total+amount, prov.Frozen)
		}
		prov.Total += amount
		if fee != nil {
			prov.Fee = *fee
		}
	case enable:
		if amount < 0 {
			return fmt.Errorf("%w: total %d", ErrInvalidProvision, amount)
		}
		prov = &Provision{Grantor: grantor, Recipient: recipient, Total: amount}
		if fee != nil {
			prov.Fee = *fee
		}
	case exists:
		if prov.Frozen != 0 {
			return fmt.Errorf("%w: %d", ErrProvisionInUse, prov.Frozen)
		}
		if err := e.state.GalleryProvisionDelete(o.symbol, grantor, recipient); err != nil {
			return err
		}
		e.emit(provisionEvent(o.symbol, prov, true))
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", ErrNoProvision, grantor, recipient)
	}
	if err := e.state.GalleryProvisionPut(o.symbol, prov); err != nil {
		return err
	}
	e.emit(provisionEvent(o.symbol, prov, false))
	return nil
}

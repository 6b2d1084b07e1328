package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultAccount is used when a holding is created without an account label
const DefaultAccount = "Default"

// Holding represents a quantity of an asset held in a named account
// Holdings are created and deleted explicitly; they never expire.
type Holding struct {
	ID       uuid.UUID
	Account  string
	AssetID  uuid.UUID
	Quantity decimal.Decimal
}

// Validate ensures the holding adheres to domain rules
// Returns an error if validation fails
func (h *Holding) Validate() error {
	if h.AssetID == uuid.Nil {
		return errors.New("holding must reference an asset")
	}

	if h.Quantity.IsNegative() {
		return errors.New("holding quantity cannot be negative")
	}

	return nil
}

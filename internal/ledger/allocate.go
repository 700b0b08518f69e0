// Package ledger holds the pure computation core of the expense ledger:
// the split allocator and the error taxonomy shared by the services built
// on top of it. Nothing in this package touches the database.
package ledger

import (
	"fmt"
	"math"

	"github.com/budgetwise/backend/internal/models"
	"github.com/google/uuid"
)

// Tolerance is the accepted drift between an expense's cost and the sum of
// its allocated split amounts, in currency units.
const Tolerance = 0.01

// SplitInput is one participant's requested share of an expense, resolved
// at the API boundary into exactly one authoritative field per share type:
// Percentage for percentage splits, Amount for exact splits, neither for
// equal splits. An empty ShareType defaults to equal.
type SplitInput struct {
	UserID     uuid.UUID
	ShareType  models.ShareType
	Percentage *float64
	Amount     *float64
}

// Split is an allocated share with its amount populated.
type Split struct {
	UserID     uuid.UUID
	ShareType  models.ShareType
	Percentage *float64
	Amount     float64
}

// Allocate resolves every entry's amount from cost and the entries' share
// types. Equal entries divide cost evenly among themselves, percentage
// entries take cost*pct/100, exact entries keep their amount verbatim.
//
// Beyond per-entry resolution it rejects split sets whose allocated amounts
// do not sum to cost within Tolerance, so an inconsistent percentage or
// exact set can never be persisted.
func Allocate(cost float64, entries []SplitInput) ([]Split, error) {
	if cost <= 0 {
		return nil, validationErrorf("cost must be positive")
	}
	if len(entries) == 0 {
		return nil, validationErrorf("at least one split participant is required")
	}

	equalCount := 0
	seen := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		if e.UserID == uuid.Nil {
			return nil, validationErrorf("every split entry requires a participant id")
		}
		if seen[e.UserID] {
			return nil, validationErrorf("a participant appears more than once in the split set")
		}
		seen[e.UserID] = true

		shareType := e.ShareType
		if shareType == "" {
			shareType = models.ShareEqual
		}
		if !shareType.Valid() {
			return nil, validationErrorf(fmt.Sprintf("unknown share type %q", e.ShareType))
		}
		if shareType == models.ShareEqual {
			equalCount++
		}
	}

	splits := make([]Split, len(entries))
	var sum float64
	for i, e := range entries {
		shareType := e.ShareType
		if shareType == "" {
			shareType = models.ShareEqual
		}

		split := Split{UserID: e.UserID, ShareType: shareType}
		switch shareType {
		case models.ShareEqual:
			split.Amount = cost / float64(equalCount)
		case models.SharePercentage:
			if e.Percentage == nil {
				return nil, validationErrorf("percentage splits require a percentage")
			}
			if *e.Percentage <= 0 || *e.Percentage > 100 {
				return nil, validationErrorf("percentage must be between 0 and 100")
			}
			pct := *e.Percentage
			split.Percentage = &pct
			split.Amount = cost * pct / 100
		case models.ShareExact:
			if e.Amount == nil {
				return nil, validationErrorf("exact splits require an amount")
			}
			if *e.Amount <= 0 {
				return nil, validationErrorf("exact split amounts must be positive")
			}
			split.Amount = *e.Amount
		}

		sum += split.Amount
		splits[i] = split
	}

	if math.Abs(sum-cost) > Tolerance {
		return nil, validationErrorf(fmt.Sprintf("split amounts sum to %.2f, expected %.2f", sum, cost))
	}

	return splits, nil
}

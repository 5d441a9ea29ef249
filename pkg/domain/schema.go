package domain

// Claim lifecycle states stored in a donation's claim_status field. An unset
// (null) status means unclaimed.
const (
	ClaimPending  = "pending"
	ClaimApproved = "approved"
	ClaimRejected = "rejected"
)

// Transaction types accepted by the fund ledger.
const (
	TxContribution = "contribution"
	TxDisbursement = "disbursement"
)

// Notification types.
const (
	NotificationWishlist = "wishlist"
	NotificationApproval = "approval"
	NotificationDonation = "donation"
	NotificationClaim    = "claim"
	NotificationGrant    = "grant"
)

// CollectionSchema declares the fields a collection requires on create and
// the defaults merged underneath the caller's payload.
type CollectionSchema struct {
	Required []string
	Defaults func() map[string]any
	// SearchFields are the fields a free-text query matches against.
	SearchFields []string
}

// Schemas maps each known collection to its declaration. Collections without
// an entry accept any payload.
var Schemas = map[Collection]CollectionSchema{
	CollectionMedicines: {
		Required:     []string{"name"},
		SearchFields: []string{"name", "generic_name"},
		Defaults: func() map[string]any {
			return map[string]any{"current_demand": float64(0), "required_demand": float64(0)}
		},
	},
	CollectionWishlists: {
		Required: []string{"user_id", "medicine_id"},
		Defaults: func() map[string]any {
			return map[string]any{"quantity": float64(1), "approved": false}
		},
	},
	CollectionDonations: {
		SearchFields: []string{"medicine_name", "generic_name"},
		Defaults: func() map[string]any {
			return map[string]any{
				"claimed_by":       nil,
				"claim_status":     nil,
				"claimed_at":       nil,
				"claim_decided_at": nil,
			}
		},
	},
	CollectionNotifications: {
		Required: []string{"user_id"},
		Defaults: func() map[string]any {
			return map[string]any{"read": false}
		},
	},
	CollectionTransactions: {
		Required: []string{"type", "amount"},
	},
	CollectionCounters: {
		Required: []string{"user_id"},
		Defaults: func() map[string]any {
			return map[string]any{"medicine_purchases": float64(0), "donations": float64(0), "grant_given": float64(0)}
		},
	},
	CollectionGrants: {
		Defaults: func() map[string]any {
			return map[string]any{"status": "pending"}
		},
	},
}

// DefaultsFor returns a fresh defaults map for the collection.
func DefaultsFor(c Collection) map[string]any {
	s, ok := Schemas[c]
	if !ok || s.Defaults == nil {
		return map[string]any{}
	}
	return s.Defaults()
}

// SearchFieldsFor returns the fields free-text search covers for c. Nil means
// every string field.
func SearchFieldsFor(c Collection) []string {
	return append([]string(nil), Schemas[c].SearchFields...)
}

// ValidateRequired checks that every required field of the collection is
// present and not null in r.
func ValidateRequired(c Collection, r Record) error {
	s, ok := Schemas[c]
	if !ok {
		return nil
	}
	for _, field := range s.Required {
		if !r.IsSet(field) {
			return ValidationError{Field: field, Reason: "is required"}
		}
		if str, isStr := r[field].(string); isStr && str == "" {
			return ValidationError{Field: field, Reason: "is required"}
		}
	}
	return nil
}

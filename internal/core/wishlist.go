package core

import (
	"context"
	"fmt"

	"medshare/pkg/domain"
)

// CreateWishlist records a medicine request, then bumps the medicine's
// current demand and notifies the requester. Both follow-ups are best effort.
func (s *Service) CreateWishlist(ctx context.Context, payload map[string]any) (domain.Record, Result, error) {
	userID, err := positiveID(payload, "user_id")
	if err != nil {
		return nil, Result{}, err
	}
	medicineID, err := positiveID(payload, "medicine_id")
	if err != nil {
		return nil, Result{}, err
	}
	fields := domain.Record{}
	fields.Merge(payload)
	fields["user_id"] = userID
	fields["medicine_id"] = medicineID
	if fields.Has("quantity") {
		q, ok := fields.Int("quantity")
		if !ok || q <= 0 {
			return nil, Result{}, domain.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
		}
		fields["quantity"] = q
	}
	fields["approved"] = fields.Bool("approved")

	var created domain.Record
	fx := s.newEffects("create_wishlist")
	err = s.run(ctx, "create_wishlist", func(tx domain.Transaction) error {
		var err error
		created, err = tx.Create(domain.CollectionWishlists, fields, nil)
		if err != nil {
			return err
		}
		label := medicineLabel(tx, medicineID, "")
		fx.attempt(EffectIncrementDemand, func() error {
			_, err := tx.Mutate(domain.CollectionMedicines, medicineID, func(m domain.Record) error {
				demand, _ := m.Int("current_demand")
				m["current_demand"] = demand + 1
				return nil
			})
			return err
		})
		fx.attempt(EffectNotifyUser, func() error {
			return s.notify(tx, notification{
				userID:    userID,
				kind:      domain.NotificationWishlist,
				title:     "Wishlist request submitted",
				message:   fmt.Sprintf("Your request for %s is waiting for a doctor's approval.", label),
				relatedID: created.ID(),
			})
		})
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	return created, fx.result("wishlist created"), nil
}

// ApproveWishlist marks the wishlist approved and sends the requester a
// notification pointing at checkout. Approving twice is a no-op.
func (s *Service) ApproveWishlist(ctx context.Context, id int64) (domain.Record, Result, error) {
	var (
		out  domain.Record
		noop bool
	)
	fx := s.newEffects("approve_wishlist")
	err := s.run(ctx, "approve_wishlist", func(tx domain.Transaction) error {
		current, err := tx.Get(domain.CollectionWishlists, id)
		if err != nil {
			return err
		}
		if current.Bool("approved") {
			out, noop = current, true
			return nil
		}
		out, err = tx.Mutate(domain.CollectionWishlists, id, func(w domain.Record) error {
			w["approved"] = true
			w["approved_at"] = s.timestamp()
			w["rejected_at"] = nil
			return nil
		})
		if err != nil {
			return err
		}
		medicineID, _ := out.Int("medicine_id")
		label := medicineLabel(tx, medicineID, "")
		fx.attempt(EffectNotifyUser, func() error {
			return s.notify(tx, notification{
				userID:    out["user_id"],
				kind:      domain.NotificationApproval,
				title:     "Wishlist approved",
				message:   fmt.Sprintf("Your request for %s was approved. You can now check out.", label),
				actionURL: fmt.Sprintf("/checkout/%d", medicineID),
				relatedID: id,
			})
		})
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	if noop {
		return out, Result{Noop: true, Message: "already approved"}, nil
	}
	return out, fx.result("wishlist approved"), nil
}

// RejectWishlist clears approval, stamps rejected_at and notifies the
// requester. It has no already-rejected guard: every call re-stamps and
// notifies again.
func (s *Service) RejectWishlist(ctx context.Context, id int64) (domain.Record, Result, error) {
	var out domain.Record
	fx := s.newEffects("reject_wishlist")
	err := s.run(ctx, "reject_wishlist", func(tx domain.Transaction) error {
		var err error
		out, err = tx.Mutate(domain.CollectionWishlists, id, func(w domain.Record) error {
			w["approved"] = false
			w["rejected_at"] = s.timestamp()
			return nil
		})
		if err != nil {
			return err
		}
		medicineID, _ := out.Int("medicine_id")
		label := medicineLabel(tx, medicineID, "")
		fx.attempt(EffectNotifyUser, func() error {
			return s.notify(tx, notification{
				userID:    out["user_id"],
				kind:      domain.NotificationApproval,
				title:     "Wishlist request declined",
				message:   fmt.Sprintf("Your request for %s was not approved.", label),
				relatedID: id,
			})
		})
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	return out, fx.result("wishlist rejected"), nil
}

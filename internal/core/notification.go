package core

import (
	"context"
	"fmt"

	"medshare/pkg/domain"
)

// Bulk notification actions.
const (
	NotificationActionRead   = "read"
	NotificationActionDelete = "delete"
)

// ClearNotifications marks every matching notification read, or deletes them
// when action is "delete". A nil userID matches every user. It returns how
// many notifications were affected.
func (s *Service) ClearNotifications(ctx context.Context, userID *int64, action string) (int, Result, error) {
	if action == "" {
		action = NotificationActionRead
	}
	if action != NotificationActionRead && action != NotificationActionDelete {
		return 0, Result{}, domain.ValidationError{Field: "action", Reason: domain.ReasonInvalidNotifAction}
	}
	match := func(n domain.Record) bool {
		if userID == nil {
			return true
		}
		id, ok := n.Int("user_id")
		return ok && id == *userID
	}

	var count int
	err := s.run(ctx, "clear_notifications", func(tx domain.Transaction) error {
		if action == NotificationActionDelete {
			count = tx.Remove(domain.CollectionNotifications, match)
			return nil
		}
		all, err := tx.List(domain.CollectionNotifications, domain.Query{})
		if err != nil {
			return err
		}
		for _, n := range all {
			if !match(n) {
				continue
			}
			count++
			if n.Bool("read") {
				continue
			}
			if _, err := tx.Mutate(domain.CollectionNotifications, n.ID(), func(r domain.Record) error {
				r["read"] = true
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, Result{}, err
	}
	verb := "marked read"
	if action == NotificationActionDelete {
		verb = "deleted"
	}
	return count, Result{Message: fmt.Sprintf("%d notifications %s", count, verb)}, nil
}

// RecordPurchase counts a checkout against the user's medicine_purchases and,
// when notificationID is positive, removes the notification that led to the
// checkout. The removal is best effort.
func (s *Service) RecordPurchase(ctx context.Context, userID, notificationID int64) (domain.Record, Result, error) {
	if userID <= 0 {
		return nil, Result{}, domain.ValidationError{Field: "user_id", Reason: "must be a positive integer"}
	}
	var counters domain.Record
	fx := s.newEffects("record_purchase")
	err := s.run(ctx, "record_purchase", func(tx domain.Transaction) error {
		var err error
		counters, err = bumpCounter(tx, userID, "medicine_purchases")
		if err != nil {
			return err
		}
		if notificationID > 0 {
			fx.attempt(EffectDeleteNotification, func() error {
				return tx.Delete(domain.CollectionNotifications, notificationID)
			})
		}
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	return counters, fx.result("purchase recorded"), nil
}

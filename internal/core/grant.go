package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"medshare/pkg/domain"
)

// Micro-grant amount bounds, inclusive.
const (
	MinGrantAmount = 1
	MaxGrantAmount = 200
)

const anonymousRequester = "Anonymous"

// RequestGrant posts a pending micro-grant request and notifies the requester
// when one is known.
func (s *Service) RequestGrant(ctx context.Context, req GrantRequest) (domain.Record, Result, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" {
		return nil, Result{}, domain.ValidationError{Field: "title", Reason: "is required"}
	}
	if description == "" {
		return nil, Result{}, domain.ValidationError{Field: "description", Reason: "is required"}
	}
	amount, ok := domain.AsFloat(req.Amount)
	if !ok || amount < MinGrantAmount || amount > MaxGrantAmount {
		return nil, Result{}, domain.ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("must be between %d and %d", MinGrantAmount, MaxGrantAmount),
		}
	}

	var created domain.Record
	fx := s.newEffects("request_grant")
	err := s.run(ctx, "request_grant", func(tx domain.Transaction) error {
		fields := map[string]any{
			"requester_name": requesterName(tx, req.UserID, req.Email),
			"title":          title,
			"description":    description,
			"amount_needed":  amount,
			"amount_raised":  float64(0),
			"supporters":     int64(0),
			"verified":       false,
			"urgent":         false,
			"requestor_id":   nil,
			"status":         "pending",
		}
		if req.UserID > 0 {
			fields["requestor_id"] = req.UserID
		}
		var err error
		created, err = tx.Create(domain.CollectionGrants, fields, nil)
		if err != nil {
			return err
		}
		if req.UserID > 0 {
			fx.attempt(EffectNotifyUser, func() error {
				return s.notify(tx, notification{
					userID:    req.UserID,
					kind:      domain.NotificationGrant,
					title:     "Micro-grant requested",
					message:   fmt.Sprintf("Your request %q is now visible to supporters.", title),
					relatedID: created.ID(),
				})
			})
		}
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	return created, fx.result("grant requested"), nil
}

// requesterName prefers the profile's full name, then the local part of the
// user's email (or the supplied one), then "Anonymous".
func requesterName(v domain.View, userID int64, email string) string {
	if userID <= 0 {
		return anonymousRequester
	}
	profiles, err := v.List(domain.CollectionProfiles, domain.Query{
		Filters: map[string]string{"user_id": domain.FormatValue(userID)},
	})
	if err == nil && len(profiles) > 0 {
		p := profiles[0]
		full := strings.TrimSpace(strings.TrimSpace(p.String("first_name")) + " " + strings.TrimSpace(p.String("last_name")))
		if full != "" {
			return full
		}
	}
	if user, err := v.Get(domain.CollectionUsers, userID); err == nil && user.String("email") != "" {
		email = user.String("email")
	}
	if local, _, _ := strings.Cut(email, "@"); local != "" {
		return local
	}
	return anonymousRequester
}

// ListGrants returns every micro-grant, newest first. Grants without a
// timestamp sort last; ties fall back to the higher id first.
func (s *Service) ListGrants(ctx context.Context) ([]domain.Record, error) {
	var grants []domain.Record
	err := s.view(ctx, "list_grants", func(v domain.View) error {
		var err error
		grants, err = v.List(domain.CollectionGrants, domain.Query{})
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(grants, func(i, j int) bool {
		ti, _ := grants[i].Time(domain.FieldCreatedAt)
		tj, _ := grants[j].Time(domain.FieldCreatedAt)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return grants[i].ID() > grants[j].ID()
	})
	return grants, nil
}

// SupportGrant adds amount to the grant's amount_raised and counts one more
// supporter. When supporterID is positive their grant_given counter is bumped
// as a best-effort follow-up.
func (s *Service) SupportGrant(ctx context.Context, id, supporterID int64, amount any) (domain.Record, Result, error) {
	add, ok := domain.AsFloat(amount)
	if !ok || add <= 0 {
		return nil, Result{}, domain.ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	var out domain.Record
	fx := s.newEffects("support_grant")
	err := s.run(ctx, "support_grant", func(tx domain.Transaction) error {
		var err error
		out, err = tx.Mutate(domain.CollectionGrants, id, func(g domain.Record) error {
			raised, _ := g.Float("amount_raised")
			supporters, _ := g.Int("supporters")
			g["amount_raised"] = raised + add
			g["supporters"] = supporters + 1
			return nil
		})
		if err != nil {
			return err
		}
		if supporterID > 0 {
			fx.attempt(EffectCountGrant, func() error {
				_, err := bumpCounter(tx, supporterID, "grant_given")
				return err
			})
		}
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	return out, fx.result("grant supported"), nil
}

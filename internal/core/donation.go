package core

import (
	"context"
	"fmt"

	"medshare/pkg/domain"
)

var claimFields = []string{"claimed_by", "claim_status", "claimed_at", "claim_decided_at"}

func donationLabel(d domain.Record) string {
	if name := d.String("medicine_name"); name != "" {
		return name
	}
	return fmt.Sprintf("donation #%d", d.ID())
}

// CreateDonation records a donation in the unclaimed state, then counts it
// for the donor and notifies them. Both follow-ups are best effort and only
// run when the donation names a donor.
func (s *Service) CreateDonation(ctx context.Context, payload map[string]any) (domain.Record, Result, error) {
	fields := domain.Record{}
	fields.Merge(payload)
	for _, f := range claimFields {
		fields[f] = nil
	}
	if fields.IsSet("quantity") {
		q, ok := fields.Int("quantity")
		if !ok || q <= 0 {
			return nil, Result{}, domain.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
		}
		fields["quantity"] = q
	}
	var donorID int64
	if fields.IsSet("donor_id") {
		id, err := positiveID(fields, "donor_id")
		if err != nil {
			return nil, Result{}, err
		}
		donorID = id
		fields["donor_id"] = id
	}

	var created domain.Record
	fx := s.newEffects("create_donation")
	err := s.run(ctx, "create_donation", func(tx domain.Transaction) error {
		var err error
		created, err = tx.Create(domain.CollectionDonations, fields, nil)
		if err != nil {
			return err
		}
		if donorID == 0 {
			return nil
		}
		fx.attempt(EffectCountDonation, func() error {
			_, err := bumpCounter(tx, donorID, "donations")
			return err
		})
		fx.attempt(EffectNotifyDonor, func() error {
			return s.notify(tx, notification{
				userID:    donorID,
				kind:      domain.NotificationDonation,
				title:     "Donation listed",
				message:   fmt.Sprintf("Thank you! Your %s is now available to patients.", donationLabel(created)),
				relatedID: created.ID(),
			})
		})
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	return created, fx.result("donation created"), nil
}

// ClaimDonation moves an unclaimed donation to pending for userID and
// notifies the claimer and, when known, the donor.
func (s *Service) ClaimDonation(ctx context.Context, id, userID int64) (domain.Record, Result, error) {
	if userID <= 0 {
		return nil, Result{}, domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	var out domain.Record
	fx := s.newEffects("claim_donation")
	err := s.run(ctx, "claim_donation", func(tx domain.Transaction) error {
		var err error
		out, err = tx.Mutate(domain.CollectionDonations, id, func(d domain.Record) error {
			if d.IsSet("claimed_by") {
				return domain.ConflictError{Collection: domain.CollectionDonations, ID: id, Reason: domain.ReasonAlreadyClaimed}
			}
			d["claimed_by"] = userID
			d["claimed_at"] = s.timestamp()
			d["claim_status"] = domain.ClaimPending
			d["claim_decided_at"] = nil
			return nil
		})
		if err != nil {
			return err
		}
		fx.attempt(EffectNotifyUser, func() error {
			return s.notify(tx, notification{
				userID:    userID,
				kind:      domain.NotificationClaim,
				title:     "Claim submitted",
				message:   fmt.Sprintf("Your claim for %s is pending review.", donationLabel(out)),
				relatedID: id,
			})
		})
		if donorID, ok := out.Int("donor_id"); ok && donorID > 0 {
			fx.attempt(EffectNotifyDonor, func() error {
				return s.notify(tx, notification{
					userID:    donorID,
					kind:      domain.NotificationDonation,
					title:     "Donation claimed",
					message:   fmt.Sprintf("Someone has requested your %s.", donationLabel(out)),
					relatedID: id,
				})
			})
		}
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	return out, fx.result("claim submitted"), nil
}

// ApproveClaim moves a pending claim to approved and notifies the claimer.
func (s *Service) ApproveClaim(ctx context.Context, id int64) (domain.Record, Result, error) {
	return s.decideClaim(ctx, id, domain.ClaimApproved)
}

// RejectClaim moves a pending claim to rejected and notifies the claimer.
func (s *Service) RejectClaim(ctx context.Context, id int64) (domain.Record, Result, error) {
	return s.decideClaim(ctx, id, domain.ClaimRejected)
}

// decideClaim requires a claimant and a pending (or unset) status. Repeating
// the decision already recorded is a no-op; reversing it is a conflict.
func (s *Service) decideClaim(ctx context.Context, id int64, decision string) (domain.Record, Result, error) {
	op := "approve_claim"
	title, verb := "Claim approved", "approved"
	if decision == domain.ClaimRejected {
		op = "reject_claim"
		title, verb = "Claim rejected", "rejected"
	}
	var (
		out  domain.Record
		noop bool
	)
	fx := s.newEffects(op)
	err := s.run(ctx, op, func(tx domain.Transaction) error {
		current, err := tx.Get(domain.CollectionDonations, id)
		if err != nil {
			return err
		}
		if !current.IsSet("claimed_by") {
			return domain.ConflictError{Collection: domain.CollectionDonations, ID: id, Reason: domain.ReasonNoPendingClaim}
		}
		switch status := current.String("claim_status"); status {
		case decision:
			out, noop = current, true
			return nil
		case "", domain.ClaimPending:
		default:
			return domain.ConflictError{Collection: domain.CollectionDonations, ID: id, Reason: domain.ReasonClaimDecided}
		}
		out, err = tx.Mutate(domain.CollectionDonations, id, func(d domain.Record) error {
			d["claim_status"] = decision
			d["claim_decided_at"] = s.timestamp()
			return nil
		})
		if err != nil {
			return err
		}
		fx.attempt(EffectNotifyUser, func() error {
			return s.notify(tx, notification{
				userID:    out["claimed_by"],
				kind:      domain.NotificationClaim,
				title:     title,
				message:   fmt.Sprintf("Your claim for %s was %s.", donationLabel(out), verb),
				relatedID: id,
			})
		})
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	if noop {
		return out, Result{Noop: true, Message: "claim already " + verb}, nil
	}
	return out, fx.result("claim " + verb), nil
}

// CancelClaim returns a pending donation to unclaimed. Only the claimant may
// cancel and only before a decision was made.
func (s *Service) CancelClaim(ctx context.Context, id, userID int64) (domain.Record, Result, error) {
	if userID <= 0 {
		return nil, Result{}, domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	var out domain.Record
	fx := s.newEffects("cancel_claim")
	err := s.run(ctx, "cancel_claim", func(tx domain.Transaction) error {
		var err error
		out, err = tx.Mutate(domain.CollectionDonations, id, func(d domain.Record) error {
			if !d.IsSet("claimed_by") {
				return domain.ConflictError{Collection: domain.CollectionDonations, ID: id, Reason: domain.ReasonNoPendingClaim}
			}
			if claimant, _ := d.Int("claimed_by"); claimant != userID {
				return domain.ForbiddenError{Collection: domain.CollectionDonations, ID: id, Actor: userID, Reason: domain.ReasonClaimantMismatch}
			}
			if status := d.String("claim_status"); status != "" && status != domain.ClaimPending {
				return domain.ConflictError{Collection: domain.CollectionDonations, ID: id, Reason: domain.ReasonDecidedClaim}
			}
			for _, f := range claimFields {
				d[f] = nil
			}
			return nil
		})
		if err != nil {
			return err
		}
		fx.attempt(EffectNotifyUser, func() error {
			return s.notify(tx, notification{
				userID:    userID,
				kind:      domain.NotificationClaim,
				title:     "Claim cancelled",
				message:   fmt.Sprintf("You cancelled your claim for %s.", donationLabel(out)),
				relatedID: id,
			})
		})
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	return out, fx.result("claim cancelled"), nil
}

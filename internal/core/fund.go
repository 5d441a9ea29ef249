package core

import (
	"context"
	"sort"

	"medshare/pkg/domain"
)

// recentTransactions is how many ledger entries FundSummary returns.
const recentTransactions = 10

// PostTransaction appends an entry to the fund ledger. The type must be a
// contribution or a disbursement and the amount a positive number; numeric
// strings are accepted and stored as numbers.
func (s *Service) PostTransaction(ctx context.Context, payload map[string]any) (domain.Record, error) {
	fields := domain.Record{}
	fields.Merge(payload)
	switch fields.String("type") {
	case domain.TxContribution, domain.TxDisbursement:
	default:
		return nil, domain.ValidationError{Field: "type", Reason: "must be contribution or disbursement"}
	}
	amount, ok := fields.Float("amount")
	if !ok || amount <= 0 {
		return nil, domain.ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	fields["amount"] = amount

	var created domain.Record
	err := s.run(ctx, "post_transaction", func(tx domain.Transaction) error {
		var err error
		created, err = tx.Create(domain.CollectionTransactions, fields, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// FundSummary totals the ledger and returns the most recent entries, newest
// first. Entries without a timestamp sort last; ties keep insertion order.
func (s *Service) FundSummary(ctx context.Context) (FundSummary, error) {
	var txs []domain.Record
	err := s.view(ctx, "fund_summary", func(v domain.View) error {
		var err error
		txs, err = v.List(domain.CollectionTransactions, domain.Query{})
		return err
	})
	if err != nil {
		return FundSummary{}, err
	}

	var out FundSummary
	for _, t := range txs {
		amount, _ := t.Float("amount")
		switch t.String("type") {
		case domain.TxContribution:
			out.TotalContributions += amount
		case domain.TxDisbursement:
			out.TotalDisbursements += amount
		}
	}
	out.Balance = out.TotalContributions - out.TotalDisbursements

	sort.SliceStable(txs, func(i, j int) bool {
		ti, iok := txs[i].Time(domain.FieldCreatedAt)
		tj, jok := txs[j].Time(domain.FieldCreatedAt)
		if iok != jok {
			return iok
		}
		return iok && ti.After(tj)
	})
	if len(txs) > recentTransactions {
		txs = txs[:recentTransactions]
	}
	out.Recent = txs
	return out, nil
}

package core

import (
	"context"
	"time"

	"medshare/pkg/domain"
)

// Logger is the structured logging contract used by the service. Args are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder observes the outcome and latency of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Effect is the outcome of one best-effort side effect of a workflow.
type Effect struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Result describes how a workflow completed. Noop is set when the requested
// state already held and nothing was written.
type Result struct {
	Noop    bool     `json:"noop,omitempty"`
	Message string   `json:"message,omitempty"`
	Effects []Effect `json:"effects,omitempty"`
}

// Degraded reports whether any side effect failed.
func (r Result) Degraded() bool {
	for _, e := range r.Effects {
		if !e.OK {
			return true
		}
	}
	return false
}

// Effect returns the named effect outcome.
func (r Result) Effect(name string) (Effect, bool) {
	for _, e := range r.Effects {
		if e.Name == name {
			return e, true
		}
	}
	return Effect{}, false
}

// FundSummary aggregates the transaction ledger.
type FundSummary struct {
	Balance            float64         `json:"balance"`
	TotalContributions float64         `json:"total_contributions"`
	TotalDisbursements float64         `json:"total_disbursements"`
	Recent             []domain.Record `json:"recent"`
}

// GrantRequest is the input of RequestGrant.
type GrantRequest struct {
	UserID      int64
	Email       string
	Title       string
	Description string
	Amount      any
}

// Side effect names reported in Result.Effects.
const (
	EffectIncrementDemand    = "increment_demand"
	EffectNotifyUser         = "notify_user"
	EffectNotifyDonor        = "notify_donor"
	EffectCountDonation      = "count_donation"
	EffectCountGrant         = "count_grant"
	EffectDeleteNotification = "delete_notification"
)

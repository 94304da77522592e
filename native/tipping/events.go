package tipping

import (
	"strconv"

	"github.com/google/uuid"

	"tipledger/core/events"
	"tipledger/core/types"
	"tipledger/crypto"
)

const (
	EventTypePlatformInitialized   = "tipping.platform.initialized"
	EventTypePlatformPaused        = "tipping.platform.paused"
	EventTypeCreatorVerified       = "tipping.creator.verified"
	EventTypeTreasuryWithdrawn     = "tipping.treasury.withdrawn"
	EventTypeGuardReset            = "tipping.guard.reset"
	EventTypeAccountCredited       = "tipping.account.credited"
	EventTypeProfileCreated        = "tipping.profile.created"
	EventTypeProfileUpdated        = "tipping.profile.updated"
	EventTypeVaultInitialized      = "tipping.vault.initialized"
	EventTypeTipSent               = "tipping.tip.sent"
	EventTypeSplitTipSent          = "tipping.tip.split_sent"
	EventTypeTokenTipSent          = "tipping.tip.token_sent"
	EventTypeWithdrawal            = "tipping.withdrawal.completed"
	EventTypeTokenWithdrawal       = "tipping.withdrawal.token_completed"
	EventTypeSplitConfigured       = "tipping.split.configured"
	EventTypeGoalCreated           = "tipping.goal.created"
	EventTypeGoalContribution      = "tipping.goal.contributed"
	EventTypeGoalCompleted         = "tipping.goal.completed"
	EventTypeGoalClosed            = "tipping.goal.closed"
	EventTypeSubscriptionCreated   = "tipping.subscription.created"
	EventTypeSubscriptionCancelled = "tipping.subscription.cancelled"
	EventTypeSubscriptionRenewal   = "tipping.subscription.renewal_updated"
	EventTypeSubscriptionPaid      = "tipping.subscription.processed"
	EventTypePollCreated           = "tipping.poll.created"
	EventTypePollVoted             = "tipping.poll.voted"
	EventTypePollClosed            = "tipping.poll.closed"
	EventTypeGateCreated           = "tipping.gate.created"
	EventTypeGateAccessed          = "tipping.gate.accessed"
	EventTypeGateClosed            = "tipping.gate.closed"
	EventTypeReferralRegistered    = "tipping.referral.registered"
	EventTypeReferralEarned        = "tipping.referral.earned"
	EventTypeReferralDeactivated   = "tipping.referral.deactivated"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

// Unwrap returns the payload of an event produced by this package.
func Unwrap(evt events.Event) (*types.Event, bool) {
	env, ok := evt.(eventEnvelope)
	if !ok || env.evt == nil {
		return nil, false
	}
	return env.evt, true
}

func newEvent(typ string, ts uint64, attrs map[string]string) *types.Event {
	return &types.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Timestamp:  int64(ts),
		Attributes: attrs,
	}
}

func addr(id [20]byte) string { return crypto.FormatIdentity(id) }

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

func flag(v bool) string { return strconv.FormatBool(v) }

// TipSentEvent describes a native tip escrowed into a vault.
func TipSentEvent(tipper, recipient [20]byte, amount uint64, message string, newTipper bool, ts uint64) *types.Event {
	return newEvent(EventTypeTipSent, ts, map[string]string{
		"tipper":    addr(tipper),
		"recipient": addr(recipient),
		"amount":    u64(amount),
		"message":   message,
		"newTipper": flag(newTipper),
	})
}

// SplitTipSentEvent describes a tip distributed across split recipients.
func SplitTipSentEvent(tipper, recipient [20]byte, amount uint64, recipients int, message string, ts uint64) *types.Event {
	return newEvent(EventTypeSplitTipSent, ts, map[string]string{
		"tipper":     addr(tipper),
		"recipient":  addr(recipient),
		"amount":     u64(amount),
		"recipients": strconv.Itoa(recipients),
		"message":    message,
	})
}

// TokenTipSentEvent describes a secondary-token tip.
func TokenTipSentEvent(tipper, recipient, token [20]byte, amount uint64, message string, ts uint64) *types.Event {
	return newEvent(EventTypeTokenTipSent, ts, map[string]string{
		"tipper":    addr(tipper),
		"recipient": addr(recipient),
		"token":     crypto.NewAddress(crypto.TokenPrefix, token[:]).String(),
		"amount":    u64(amount),
		"message":   message,
	})
}

// WithdrawalEvent describes a native vault withdrawal and its fee breakdown.
func WithdrawalEvent(w *Withdrawal, ts uint64) *types.Event {
	return newEvent(EventTypeWithdrawal, ts, map[string]string{
		"owner":        addr(w.Owner),
		"amount":       u64(w.Amount),
		"totalFee":     u64(w.TotalFee),
		"platformFee":  u64(w.PlatformFee),
		"referralFee":  u64(w.ReferralFee),
		"retainedFee":  u64(w.RetainedFee),
		"creatorShare": u64(w.CreatorShare),
	})
}

// TokenWithdrawalEvent describes a secondary-token withdrawal.
func TokenWithdrawalEvent(w *Withdrawal, ts uint64) *types.Event {
	return newEvent(EventTypeTokenWithdrawal, ts, map[string]string{
		"owner":        addr(w.Owner),
		"token":        crypto.NewAddress(crypto.TokenPrefix, w.Token[:]).String(),
		"amount":       u64(w.Amount),
		"platformFee":  u64(w.PlatformFee),
		"creatorShare": u64(w.CreatorShare),
	})
}

// GoalContributionEvent describes progress on a fundraising goal.
func GoalContributionEvent(contributor [20]byte, goal *Goal, amount uint64, message string, ts uint64) *types.Event {
	return newEvent(EventTypeGoalContribution, ts, map[string]string{
		"contributor": addr(contributor),
		"recipient":   addr(goal.Profile),
		"goalId":      u64(goal.ID),
		"amount":      u64(amount),
		"current":     u64(goal.Current),
		"completed":   flag(goal.Completed),
		"message":     message,
	})
}

// SubscriptionProcessedEvent describes one settled subscription payment.
func SubscriptionProcessedEvent(sub *Subscription, fee uint64, ts uint64) *types.Event {
	return newEvent(EventTypeSubscriptionPaid, ts, map[string]string{
		"subscriber":   addr(sub.Subscriber),
		"recipient":    addr(sub.Profile),
		"amount":       u64(sub.Amount),
		"platformFee":  u64(fee),
		"paymentCount": u64(sub.PaymentCount),
		"nextDue":      u64(sub.NextDue),
		"active":       flag(sub.Active),
	})
}

// PollVotedEvent describes a tip-weighted vote.
func PollVotedEvent(voter [20]byte, poll *Poll, option int, amount uint64, ts uint64) *types.Event {
	return newEvent(EventTypePollVoted, ts, map[string]string{
		"voter":     addr(voter),
		"recipient": addr(poll.Profile),
		"pollId":    u64(poll.ID),
		"option":    strconv.Itoa(option),
		"amount":    u64(amount),
	})
}

// PollClosedEvent announces the winning option.
func PollClosedEvent(poll *Poll, winner int, ts uint64) *types.Event {
	attrs := map[string]string{
		"recipient":   addr(poll.Profile),
		"pollId":      u64(poll.ID),
		"totalVotes":  u64(poll.TotalVotes),
		"totalAmount": u64(poll.TotalAmount),
		"winner":      strconv.Itoa(winner),
	}
	if winner >= 0 && winner < len(poll.Options) {
		attrs["winnerLabel"] = poll.Options[winner].Label
	}
	return newEvent(EventTypePollClosed, ts, attrs)
}

// GateAccessedEvent records a granted content access.
func GateAccessedEvent(viewer [20]byte, gate *ContentGate, totalTipped uint64, ts uint64) *types.Event {
	return newEvent(EventTypeGateAccessed, ts, map[string]string{
		"viewer":      addr(viewer),
		"recipient":   addr(gate.Profile),
		"gateId":      u64(gate.ID),
		"totalTipped": u64(totalTipped),
		"accessCount": u64(gate.AccessCount),
	})
}

// ReferralEarnedEvent records a referral fee credit.
func ReferralEarnedEvent(referral *Referral, amount uint64, ts uint64) *types.Event {
	return newEvent(EventTypeReferralEarned, ts, map[string]string{
		"referrer":    addr(referral.Referrer),
		"referee":     addr(referral.Referee),
		"amount":      u64(amount),
		"totalEarned": u64(referral.TotalEarned),
	})
}

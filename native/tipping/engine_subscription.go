package tipping

import (
	"context"

	"tipledger/observability"
)

// SubscriptionParams describes a new recurring payment. A zero Token settles
// in the native unit.
type SubscriptionParams struct {
	Amount   uint64
	Interval uint64
	Token    [20]byte
}

// CreateSubscription starts a recurring payment from subscriber to owner. An
// inactive subscription for the same pair is replaced.
func (e *Engine) CreateSubscription(ctx context.Context, subscriber, owner [20]byte, params SubscriptionParams) (*Subscription, error) {
	var out *Subscription
	err := e.execute(ctx, "create_subscription", [][20]byte{subscriber, owner}, func(s *opScope) error {
		if subscriber == owner {
			return ErrCannotTipSelf
		}
		if _, err := activePlatform(s.tx); err != nil {
			return err
		}
		if _, err := loadProfile(s.tx, owner); err != nil {
			return err
		}
		if existing, ok, err := s.tx.SubscriptionGet(subscriber, owner); err != nil {
			return err
		} else if ok && existing != nil && existing.Active {
			return ErrAccountAlreadyExists
		}
		sub, err := newSubscription(subscriber, owner, params.Token, params.Amount, params.Interval, s.now)
		if err != nil {
			return err
		}
		if err := s.tx.SubscriptionPut(sub); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeSubscriptionCreated, s.now, map[string]string{
			"subscriber": addr(subscriber),
			"recipient":  addr(owner),
			"amount":     u64(sub.Amount),
			"interval":   u64(sub.Interval),
			"nextDue":    u64(sub.NextDue),
			"token":      flag(sub.IsToken()),
		}))
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadSubscription(st State, caller, subscriber, owner [20]byte) (*Subscription, error) {
	if caller != subscriber {
		return nil, ErrNotSubscriber
	}
	sub, ok, err := st.SubscriptionGet(subscriber, owner)
	if err != nil {
		return nil, err
	}
	if !ok || sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// CancelSubscription stops future payments. Only the subscriber may cancel.
func (e *Engine) CancelSubscription(ctx context.Context, caller, subscriber, owner [20]byte) (*Subscription, error) {
	var out *Subscription
	err := e.execute(ctx, "cancel_subscription", [][20]byte{subscriber, owner}, func(s *opScope) error {
		sub, err := loadSubscription(s.tx, caller, subscriber, owner)
		if err != nil {
			return err
		}
		if err := sub.Cancel(); err != nil {
			return err
		}
		if err := s.tx.SubscriptionPut(sub); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeSubscriptionCancelled, s.now, map[string]string{
			"subscriber":   addr(subscriber),
			"recipient":    addr(owner),
			"totalPaid":    u64(sub.TotalPaid),
			"paymentCount": u64(sub.PaymentCount),
		}))
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetSubscriptionAutoRenew toggles renewal on an active subscription.
func (e *Engine) SetSubscriptionAutoRenew(ctx context.Context, caller, subscriber, owner [20]byte, autoRenew bool) (*Subscription, error) {
	var out *Subscription
	err := e.execute(ctx, "set_subscription_auto_renew", [][20]byte{subscriber, owner}, func(s *opScope) error {
		sub, err := loadSubscription(s.tx, caller, subscriber, owner)
		if err != nil {
			return err
		}
		if !sub.Active {
			return ErrSubscriptionNotActive
		}
		sub.AutoRenew = autoRenew
		if err := s.tx.SubscriptionPut(sub); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeSubscriptionRenewal, s.now, map[string]string{
			"subscriber": addr(subscriber),
			"recipient":  addr(owner),
			"autoRenew":  flag(autoRenew),
		}))
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessSubscription settles one due payment. Any caller may trigger it; the
// subscriber's balance pays, the owner receives the amount less the platform
// fee.
func (e *Engine) ProcessSubscription(ctx context.Context, subscriber, owner [20]byte) (*Subscription, error) {
	var out *Subscription
	ids := [][20]byte{subscriber, owner, TreasuryIdentity}
	err := e.execute(ctx, "process_subscription", ids, func(s *opScope) error {
		sub, ok, err := s.tx.SubscriptionGet(subscriber, owner)
		if err != nil {
			return err
		}
		if !ok || sub == nil {
			return ErrSubscriptionNotFound
		}
		if !sub.Active {
			return ErrSubscriptionNotActive
		}
		if s.now < sub.NextDue {
			return ErrSubscriptionNotDue
		}
		cfg, err := activePlatform(s.tx)
		if err != nil {
			return err
		}
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		return guarded(s.tx, profile, func() error {
			if err := sub.ProcessPayment(s.now); err != nil {
				return err
			}
			fee, err := CalculateFee(sub.Amount, uint64(cfg.FeeBps))
			if err != nil {
				return err
			}
			if sub.IsToken() {
				if err := transferToken(s.tx, sub.Token, subscriber, owner, sub.Amount-fee); err != nil {
					return err
				}
				if err := transferToken(s.tx, sub.Token, subscriber, cfg.Treasury, fee); err != nil {
					return err
				}
				if err := profile.RecordTokenTip(sub.Amount); err != nil {
					return err
				}
			} else {
				if err := transfer(s.tx, subscriber, owner, sub.Amount-fee); err != nil {
					return err
				}
				if err := transfer(s.tx, subscriber, cfg.Treasury, fee); err != nil {
					return err
				}
				_, isNew, err := recordTipper(s.tx, subscriber, owner, sub.Amount, s.now)
				if err != nil {
					return err
				}
				if err := profile.RecordTip(subscriber, sub.Amount, isNew); err != nil {
					return err
				}
			}
			profile.UpdatedAt = s.now
			if err := s.tx.SubscriptionPut(sub); err != nil {
				return err
			}
			s.emit(SubscriptionProcessedEvent(sub, fee, s.now))
			out = sub
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if !out.IsToken() {
		observability.Ledger().RecordVolume("process_subscription", out.Amount)
	}
	return out, nil
}

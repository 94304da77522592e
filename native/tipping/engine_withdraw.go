package tipping

import (
	"context"
	"log/slog"

	"tipledger/observability"
)

// Withdrawal is the fee breakdown of a settled withdrawal. Token is zero for
// native withdrawals.
type Withdrawal struct {
	Owner        [20]byte
	Token        [20]byte
	Amount       uint64
	TotalFee     uint64
	PlatformFee  uint64
	ReferralFee  uint64
	RetainedFee  uint64
	CreatorShare uint64
}

// splitWithdrawal computes total, platform and creator portions of amount.
func splitWithdrawal(amount uint64, withdrawalBps, platformBps uint16) (*Withdrawal, error) {
	totalFee, err := CalculateFee(amount, uint64(withdrawalBps))
	if err != nil {
		return nil, err
	}
	platformFee, err := CalculateFee(totalFee, uint64(platformBps))
	if err != nil {
		return nil, err
	}
	creatorShare, err := subUint64(amount, totalFee)
	if err != nil {
		return nil, err
	}
	return &Withdrawal{
		Amount:       amount,
		TotalFee:     totalFee,
		PlatformFee:  platformFee,
		RetainedFee:  totalFee - platformFee,
		CreatorShare: creatorShare,
	}, nil
}

// Withdraw releases amount from owner's vault. The creator share goes to the
// owner, fees go to the treasury and, when the profile was referred, the
// referrer's cut of the platform fee goes to the referrer.
func (e *Engine) Withdraw(ctx context.Context, owner [20]byte, amount uint64) (*Withdrawal, error) {
	var (
		out      *Withdrawal
		referrer [20]byte
	)
	lockSet := func() ([][20]byte, error) {
		referrer = [20]byte{}
		err := e.view(func(st State) error {
			profile, ok, err := st.ProfileGet(owner)
			if err != nil || !ok || profile == nil {
				return err
			}
			referrer = profile.Referrer
			return nil
		})
		return [][20]byte{owner, TreasuryIdentity, referrer}, err
	}
	err := e.executeRetrying(ctx, "withdraw", lockSet, func(s *opScope) error {
		cfg, err := activePlatform(s.tx)
		if err != nil {
			return err
		}
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		if profile.Referrer != referrer {
			return errLockSetChanged
		}
		if amount < MinWithdrawalAmount {
			return ErrWithdrawalTooSmall
		}
		vault, err := loadVault(s.tx, owner)
		if err != nil {
			return err
		}
		if vault.Withdrawable() < amount {
			return ErrInsufficientBalance
		}
		return guarded(s.tx, profile, func() error {
			w, err := splitWithdrawal(amount, profile.WithdrawalFeeBps, cfg.FeeBps)
			if err != nil {
				return err
			}
			w.Owner = owner
			var referral *Referral
			if referrer != ([20]byte{}) {
				record, ok, err := s.tx.ReferralGet(referrer, owner)
				if err != nil {
					return err
				}
				if ok && record != nil && record.Active {
					referral = record
					if w.ReferralFee, err = CalculateFee(w.PlatformFee, uint64(record.FeeShareBps)); err != nil {
						return err
					}
				}
			}
			if err := vault.Withdraw(amount); err != nil {
				return err
			}
			if err := s.tx.VaultPut(vault); err != nil {
				return err
			}
			if err := credit(s.tx, owner, w.CreatorShare); err != nil {
				return err
			}
			if err := credit(s.tx, cfg.Treasury, w.TotalFee-w.ReferralFee); err != nil {
				return err
			}
			if referral != nil && w.ReferralFee > 0 {
				if err := credit(s.tx, referral.Referrer, w.ReferralFee); err != nil {
					return err
				}
				if err := referral.RecordEarning(w.ReferralFee); err != nil {
					return err
				}
				if err := s.tx.ReferralPut(referral); err != nil {
					return err
				}
				s.emit(ReferralEarnedEvent(referral, w.ReferralFee, s.now))
			}
			if w.RetainedFee > 0 {
				cfg.RetainedFees = saturatingAdd(cfg.RetainedFees, w.RetainedFee)
				if err := s.tx.PlatformPut(cfg); err != nil {
					return err
				}
			}
			s.emit(WithdrawalEvent(w, s.now))
			out = w
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "vault withdrawal settled",
		e.logAttr("owner", owner),
		slog.Uint64("amount", out.Amount),
		slog.Uint64("creatorShare", out.CreatorShare),
		slog.Uint64("totalFee", out.TotalFee))
	observability.Ledger().RecordVolume("withdraw", amount)
	return out, nil
}

// WithdrawToken settles the platform fee on secondary-token earnings. The
// creator's share stays in the owner's token account.
func (e *Engine) WithdrawToken(ctx context.Context, owner, token [20]byte, amount uint64) (*Withdrawal, error) {
	var out *Withdrawal
	err := e.execute(ctx, "withdraw_token", [][20]byte{owner, TreasuryIdentity}, func(s *opScope) error {
		cfg, err := activePlatform(s.tx)
		if err != nil {
			return err
		}
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		if amount < MinWithdrawalAmount {
			return ErrWithdrawalTooSmall
		}
		balance, err := s.tx.TokenBalance(owner, token)
		if err != nil {
			return err
		}
		if balance < amount {
			return ErrInsufficientToken
		}
		return guarded(s.tx, profile, func() error {
			w, err := splitWithdrawal(amount, profile.WithdrawalFeeBps, cfg.FeeBps)
			if err != nil {
				return err
			}
			w.Owner = owner
			w.Token = token
			if err := transferToken(s.tx, token, owner, cfg.Treasury, w.PlatformFee); err != nil {
				return err
			}
			s.emit(TokenWithdrawalEvent(w, s.now))
			out = w
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

package tipping

import (
	"context"

	"tipledger/observability"
)

// TipRequest is a native tip into a creator's vault.
type TipRequest struct {
	Tipper    [20]byte
	Recipient [20]byte
	Amount    uint64
	Message   string
}

// TipReceipt summarises a committed tip.
type TipReceipt struct {
	Tipper       [20]byte
	Recipient    [20]byte
	Amount       uint64
	NewTipper    bool
	Badge        BadgeTier
	VaultBalance uint64
	Timestamp    uint64
}

// SplitTipRequest is a tip distributed over the recipient's configured split.
// Wallets must repeat the configured recipients in stored order.
type SplitTipRequest struct {
	Tipper    [20]byte
	Recipient [20]byte
	Amount    uint64
	Message   string
	Wallets   [][20]byte
}

// SplitReceipt lists each wallet's share of a split tip.
type SplitReceipt struct {
	TipReceipt
	Wallets [][20]byte
	Shares  []uint64
}

// TokenTipRequest is a secondary-token tip paid directly to the creator.
type TokenTipRequest struct {
	Tipper    [20]byte
	Recipient [20]byte
	Token     [20]byte
	Amount    uint64
	Message   string
}

// preflight runs the admission checks shared by every tip variant: self-tip,
// pause, anonymous policy and rate limiting, in that order.
func (e *Engine) preflight(s *opScope, tipper, recipient [20]byte, message string) (*Profile, error) {
	if tipper == recipient {
		return nil, ErrCannotTipSelf
	}
	if _, err := activePlatform(s.tx); err != nil {
		return nil, err
	}
	profile, err := loadProfile(s.tx, recipient)
	if err != nil {
		return nil, err
	}
	if !profile.AcceptAnonymous && message == "" {
		return nil, ErrAnonymousTipsDisabled
	}
	if _, err := e.admitRate(s.tx, tipper, recipient, s.now); err != nil {
		return nil, err
	}
	return profile, nil
}

func validateTip(profile *Profile, amount uint64, message string) error {
	if err := profile.ValidateTipAmount(amount); err != nil {
		return err
	}
	return ValidateMessage(message)
}

// SendTip escrows a native tip in the recipient's vault and updates the
// tipper record, profile stats and leaderboard.
func (e *Engine) SendTip(ctx context.Context, req TipRequest) (*TipReceipt, error) {
	var out *TipReceipt
	err := e.execute(ctx, "send_tip", [][20]byte{req.Tipper, req.Recipient}, func(s *opScope) error {
		profile, err := e.preflight(s, req.Tipper, req.Recipient, req.Message)
		if err != nil {
			return err
		}
		return guarded(s.tx, profile, func() error {
			if err := validateTip(profile, req.Amount, req.Message); err != nil {
				return err
			}
			vault, err := loadVault(s.tx, req.Recipient)
			if err != nil {
				return err
			}
			if err := debit(s.tx, req.Tipper, req.Amount); err != nil {
				return err
			}
			if err := vault.Deposit(req.Amount); err != nil {
				return err
			}
			if err := s.tx.VaultPut(vault); err != nil {
				return err
			}
			record, isNew, err := recordTipper(s.tx, req.Tipper, req.Recipient, req.Amount, s.now)
			if err != nil {
				return err
			}
			if err := profile.RecordTip(req.Tipper, req.Amount, isNew); err != nil {
				return err
			}
			profile.UpdatedAt = s.now
			s.emit(TipSentEvent(req.Tipper, req.Recipient, req.Amount, req.Message, isNew, s.now))
			out = &TipReceipt{
				Tipper:       req.Tipper,
				Recipient:    req.Recipient,
				Amount:       req.Amount,
				NewTipper:    isNew,
				Badge:        record.Badge,
				VaultBalance: vault.Balance,
				Timestamp:    s.now,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	observability.Ledger().RecordVolume("send_tip", req.Amount)
	return out, nil
}

// SendTipSplit pays a tip straight to the recipient's split wallets.
func (e *Engine) SendTipSplit(ctx context.Context, req SplitTipRequest) (*SplitReceipt, error) {
	ids := append([][20]byte{req.Tipper, req.Recipient}, req.Wallets...)
	var out *SplitReceipt
	err := e.execute(ctx, "send_tip_split", ids, func(s *opScope) error {
		profile, err := e.preflight(s, req.Tipper, req.Recipient, req.Message)
		if err != nil {
			return err
		}
		return guarded(s.tx, profile, func() error {
			if err := validateTip(profile, req.Amount, req.Message); err != nil {
				return err
			}
			split, ok, err := s.tx.SplitGet(req.Recipient)
			if err != nil {
				return err
			}
			if !ok || split == nil || !split.Active {
				return ErrSplitNotFound
			}
			shares, err := split.Shares(req.Amount)
			if err != nil {
				return err
			}
			if !split.Matches(req.Wallets) {
				return ErrSplitRecipientMismatch
			}
			for i, recipient := range split.Recipients {
				if err := transfer(s.tx, req.Tipper, recipient.Wallet, shares[i]); err != nil {
					return err
				}
			}
			record, isNew, err := recordTipper(s.tx, req.Tipper, req.Recipient, req.Amount, s.now)
			if err != nil {
				return err
			}
			if err := profile.RecordTip(req.Tipper, req.Amount, isNew); err != nil {
				return err
			}
			profile.UpdatedAt = s.now
			s.emit(SplitTipSentEvent(req.Tipper, req.Recipient, req.Amount, len(shares), req.Message, s.now))
			wallets := make([][20]byte, len(split.Recipients))
			for i, recipient := range split.Recipients {
				wallets[i] = recipient.Wallet
			}
			out = &SplitReceipt{
				TipReceipt: TipReceipt{
					Tipper:    req.Tipper,
					Recipient: req.Recipient,
					Amount:    req.Amount,
					NewTipper: isNew,
					Badge:     record.Badge,
					Timestamp: s.now,
				},
				Wallets: wallets,
				Shares:  shares,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	observability.Ledger().RecordVolume("send_tip_split", req.Amount)
	return out, nil
}

// SendTipToken pays a secondary-token tip directly to the creator. Only the
// secondary aggregates move; the native leaderboard is untouched.
func (e *Engine) SendTipToken(ctx context.Context, req TokenTipRequest) (*TipReceipt, error) {
	var out *TipReceipt
	err := e.execute(ctx, "send_tip_token", [][20]byte{req.Tipper, req.Recipient}, func(s *opScope) error {
		profile, err := e.preflight(s, req.Tipper, req.Recipient, req.Message)
		if err != nil {
			return err
		}
		return guarded(s.tx, profile, func() error {
			if err := validateTip(profile, req.Amount, req.Message); err != nil {
				return err
			}
			if err := transferToken(s.tx, req.Token, req.Tipper, req.Recipient, req.Amount); err != nil {
				return err
			}
			if err := profile.RecordTokenTip(req.Amount); err != nil {
				return err
			}
			profile.UpdatedAt = s.now
			s.emit(TokenTipSentEvent(req.Tipper, req.Recipient, req.Token, req.Amount, req.Message, s.now))
			out = &TipReceipt{
				Tipper:    req.Tipper,
				Recipient: req.Recipient,
				Amount:    req.Amount,
				Timestamp: s.now,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	observability.Ledger().RecordVolume("send_tip_token", req.Amount)
	return out, nil
}

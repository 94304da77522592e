package tipping

import "context"

// InitializePlatform creates the global configuration with admin as authority
// and seeds the treasury with the minimum reserve from admin's balance.
func (e *Engine) InitializePlatform(ctx context.Context, admin [20]byte) (*PlatformConfig, error) {
	var out *PlatformConfig
	err := e.execute(ctx, "initialize_platform", [][20]byte{admin, TreasuryIdentity}, func(s *opScope) error {
		if _, ok, err := s.tx.PlatformGet(); err != nil {
			return err
		} else if ok {
			return ErrAccountAlreadyExists
		}
		cfg := &PlatformConfig{
			Admin:         admin,
			Treasury:      TreasuryIdentity,
			FeeBps:        DefaultPlatformFeeBps,
			InitializedAt: s.now,
		}
		if err := transfer(s.tx, admin, TreasuryIdentity, MinReserve); err != nil {
			return err
		}
		if err := s.tx.PlatformPut(cfg); err != nil {
			return err
		}
		s.emit(newEvent(EventTypePlatformInitialized, s.now, map[string]string{
			"admin":    addr(admin),
			"treasury": addr(cfg.Treasury),
			"feeBps":   u64(uint64(cfg.FeeBps)),
		}))
		out = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyCreator sets the verification flag on a profile.
func (e *Engine) VerifyCreator(ctx context.Context, admin, owner [20]byte, verified bool) (*Profile, error) {
	var out *Profile
	err := e.execute(ctx, "verify_creator", [][20]byte{owner}, func(s *opScope) error {
		cfg, err := loadPlatform(s.tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, admin); err != nil {
			return err
		}
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		profile.Verified = verified
		profile.UpdatedAt = s.now
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeCreatorVerified, s.now, map[string]string{
			"owner":    addr(owner),
			"verified": flag(verified),
		}))
		out = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetPaused toggles the platform-wide pause switch.
func (e *Engine) SetPaused(ctx context.Context, admin [20]byte, paused bool) (*PlatformConfig, error) {
	var out *PlatformConfig
	err := e.execute(ctx, "set_paused", [][20]byte{TreasuryIdentity}, func(s *opScope) error {
		cfg, err := loadPlatform(s.tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, admin); err != nil {
			return err
		}
		cfg.Paused = paused
		if err := s.tx.PlatformPut(cfg); err != nil {
			return err
		}
		s.emit(newEvent(EventTypePlatformPaused, s.now, map[string]string{
			"admin":  addr(admin),
			"paused": flag(paused),
		}))
		out = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithdrawTreasury moves treasury funds above the reserve to destination.
func (e *Engine) WithdrawTreasury(ctx context.Context, admin, destination [20]byte, amount uint64) error {
	return e.execute(ctx, "withdraw_treasury", [][20]byte{TreasuryIdentity, destination}, func(s *opScope) error {
		cfg, err := loadPlatform(s.tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, admin); err != nil {
			return err
		}
		if amount == 0 {
			return ErrWithdrawalTooSmall
		}
		balance, err := s.tx.Balance(cfg.Treasury)
		if err != nil {
			return err
		}
		if amount > saturatingSub(balance, MinReserve) {
			return ErrInsufficientBalance
		}
		if err := transfer(s.tx, cfg.Treasury, destination, amount); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeTreasuryWithdrawn, s.now, map[string]string{
			"admin":       addr(admin),
			"destination": addr(destination),
			"amount":      u64(amount),
		}))
		return nil
	})
}

// ResetReentrancyGuard clears a guard left held on a profile.
func (e *Engine) ResetReentrancyGuard(ctx context.Context, admin, owner [20]byte) error {
	return e.execute(ctx, "reset_reentrancy_guard", [][20]byte{owner}, func(s *opScope) error {
		cfg, err := loadPlatform(s.tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, admin); err != nil {
			return err
		}
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		profile.ReleaseGuard()
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeGuardReset, s.now, map[string]string{
			"admin": addr(admin),
			"owner": addr(owner),
		}))
		return nil
	})
}

// CreditAccount funds addr from outside the ledger and returns the new balance.
func (e *Engine) CreditAccount(ctx context.Context, to [20]byte, amount uint64) (uint64, error) {
	var balance uint64
	err := e.execute(ctx, "credit_account", [][20]byte{to}, func(s *opScope) error {
		if amount == 0 {
			return ErrInvalidAmount
		}
		if err := credit(s.tx, to, amount); err != nil {
			return err
		}
		var err error
		if balance, err = s.tx.Balance(to); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeAccountCredited, s.now, map[string]string{
			"account": addr(to),
			"amount":  u64(amount),
		}))
		return nil
	})
	return balance, err
}

// CreditTokenAccount funds addr with a secondary token from outside the ledger.
func (e *Engine) CreditTokenAccount(ctx context.Context, to, token [20]byte, amount uint64) (uint64, error) {
	var balance uint64
	err := e.execute(ctx, "credit_token_account", [][20]byte{to}, func(s *opScope) error {
		if amount == 0 {
			return ErrInvalidAmount
		}
		current, err := s.tx.TokenBalance(to, token)
		if err != nil {
			return err
		}
		if balance, err = addUint64(current, amount); err != nil {
			return err
		}
		if err := s.tx.SetTokenBalance(to, token, balance); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeAccountCredited, s.now, map[string]string{
			"account": addr(to),
			"token":   addr(token),
			"amount":  u64(amount),
		}))
		return nil
	})
	return balance, err
}

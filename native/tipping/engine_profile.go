package tipping

import (
	"context"

	"tipledger/crypto"
	"tipledger/observability/logging"
)

// CreateProfile registers a creator profile for owner. Usernames are unique
// across the ledger.
func (e *Engine) CreateProfile(ctx context.Context, owner [20]byte, params ProfileParams) (*Profile, error) {
	var out *Profile
	usernameLock := crypto.DeriveIdentity(NamespaceUsername, []byte(params.Username))
	err := e.execute(ctx, "create_profile", [][20]byte{owner, usernameLock}, func(s *opScope) error {
		if _, ok, err := s.tx.ProfileGet(owner); err != nil {
			return err
		} else if ok {
			return ErrAccountAlreadyExists
		}
		profile, err := newProfile(owner, params, s.now)
		if err != nil {
			return err
		}
		if _, taken, err := s.tx.UsernameOwner(profile.Username); err != nil {
			return err
		} else if taken {
			return ErrUsernameTaken
		}
		if err := s.tx.UsernamePut(profile.Username, owner); err != nil {
			return err
		}
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeProfileCreated, s.now, map[string]string{
			"owner":    addr(owner),
			"username": profile.Username,
		}))
		out = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile applies the set fields of update to the caller's profile.
func (e *Engine) UpdateProfile(ctx context.Context, owner [20]byte, update ProfileUpdate) (*Profile, error) {
	var out *Profile
	err := e.execute(ctx, "update_profile", [][20]byte{owner}, func(s *opScope) error {
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		if err := profile.Apply(update, s.now); err != nil {
			return err
		}
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeProfileUpdated, s.now, map[string]string{
			"owner":            addr(owner),
			"minTipAmount":     u64(profile.MinTipAmount),
			"withdrawalFeeBps": u64(uint64(profile.WithdrawalFeeBps)),
			"acceptAnonymous":  flag(profile.AcceptAnonymous),
		}))
		out = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfileExtended applies preset amounts, social links and webhook URL.
func (e *Engine) UpdateProfileExtended(ctx context.Context, owner [20]byte, update ExtendedUpdate) (*Profile, error) {
	var out *Profile
	err := e.execute(ctx, "update_profile_extended", [][20]byte{owner}, func(s *opScope) error {
		profile, err := loadProfile(s.tx, owner)
		if err != nil {
			return err
		}
		if err := profile.ApplyExtended(update, s.now); err != nil {
			return err
		}
		if err := s.tx.ProfilePut(profile); err != nil {
			return err
		}
		attrs := map[string]string{
			"owner":   addr(owner),
			"presets": u64(uint64(len(profile.PresetAmounts))),
		}
		if update.WebhookURL != nil {
			attrs["webhookUrl"] = logging.MaskURL(profile.WebhookURL)
		}
		s.emit(newEvent(EventTypeProfileUpdated, s.now, attrs))
		out = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InitializeVault opens the escrow vault for owner's profile, funding the
// reserve from owner's balance.
func (e *Engine) InitializeVault(ctx context.Context, owner [20]byte) (*Vault, error) {
	var out *Vault
	err := e.execute(ctx, "initialize_vault", [][20]byte{owner}, func(s *opScope) error {
		if _, err := loadProfile(s.tx, owner); err != nil {
			return err
		}
		if _, ok, err := s.tx.VaultGet(owner); err != nil {
			return err
		} else if ok {
			return ErrAccountAlreadyExists
		}
		if err := debit(s.tx, owner, MinReserve); err != nil {
			return err
		}
		vault := &Vault{Owner: owner, CreatedAt: s.now}
		if err := vault.Deposit(MinReserve); err != nil {
			return err
		}
		if err := s.tx.VaultPut(vault); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeVaultInitialized, s.now, map[string]string{
			"owner":   addr(owner),
			"reserve": u64(MinReserve),
		}))
		out = vault
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConfigureSplit creates or replaces the split recipients of owner's profile.
func (e *Engine) ConfigureSplit(ctx context.Context, owner [20]byte, recipients []SplitRecipient) (*TipSplit, error) {
	var out *TipSplit
	err := e.execute(ctx, "configure_split", [][20]byte{owner}, func(s *opScope) error {
		if _, err := loadProfile(s.tx, owner); err != nil {
			return err
		}
		split, ok, err := s.tx.SplitGet(owner)
		if err != nil {
			return err
		}
		if !ok || split == nil {
			split = &TipSplit{Profile: owner}
		}
		if err := split.Configure(recipients, s.now); err != nil {
			return err
		}
		if err := s.tx.SplitPut(split); err != nil {
			return err
		}
		s.emit(newEvent(EventTypeSplitConfigured, s.now, map[string]string{
			"owner":      addr(owner),
			"recipients": u64(uint64(len(split.Recipients))),
		}))
		out = split
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

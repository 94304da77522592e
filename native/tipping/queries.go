package tipping

// Profile returns the profile of owner.
func (e *Engine) Profile(owner [20]byte) (*Profile, error) {
	var out *Profile
	err := e.view(func(st State) (err error) {
		out, err = loadProfile(st, owner)
		return err
	})
	return out, err
}

// ProfileByUsername resolves a username to its profile.
func (e *Engine) ProfileByUsername(username string) (*Profile, error) {
	var out *Profile
	err := e.view(func(st State) error {
		owner, ok, err := st.UsernameOwner(NormalizeText(username))
		if err != nil {
			return err
		}
		if !ok {
			return ErrAccountNotInitialized
		}
		out, err = loadProfile(st, owner)
		return err
	})
	return out, err
}

// Vault returns the escrow vault of owner.
func (e *Engine) Vault(owner [20]byte) (*Vault, error) {
	var out *Vault
	err := e.view(func(st State) (err error) {
		out, err = loadVault(st, owner)
		return err
	})
	return out, err
}

// TipperRecord returns what tipper has sent owner. ok is false when nothing
// has been sent yet.
func (e *Engine) TipperRecord(tipper, owner [20]byte) (record *TipperRecord, ok bool, err error) {
	err = e.view(func(st State) (err error) {
		record, ok, err = st.TipperRecordGet(tipper, owner)
		return err
	})
	return record, ok, err
}

// RateLimit returns the limiter state of payer towards owner.
func (e *Engine) RateLimit(payer, owner [20]byte) (limit *RateLimit, ok bool, err error) {
	err = e.view(func(st State) (err error) {
		limit, ok, err = st.RateLimitGet(payer, owner)
		return err
	})
	return limit, ok, err
}

// Split returns the split configuration of owner.
func (e *Engine) Split(owner [20]byte) (*TipSplit, error) {
	var out *TipSplit
	err := e.view(func(st State) error {
		split, ok, err := st.SplitGet(owner)
		if err != nil {
			return err
		}
		if !ok || split == nil {
			return ErrSplitNotFound
		}
		out = split
		return nil
	})
	return out, err
}

// Subscription returns the subscription of subscriber to owner.
func (e *Engine) Subscription(subscriber, owner [20]byte) (*Subscription, error) {
	var out *Subscription
	err := e.view(func(st State) error {
		sub, ok, err := st.SubscriptionGet(subscriber, owner)
		if err != nil {
			return err
		}
		if !ok || sub == nil {
			return ErrSubscriptionNotFound
		}
		out = sub
		return nil
	})
	return out, err
}

// Goal returns goal id of owner.
func (e *Engine) Goal(owner [20]byte, id uint64) (*Goal, error) {
	var out *Goal
	err := e.view(func(st State) error {
		goal, ok, err := st.GoalGet(owner, id)
		if err != nil {
			return err
		}
		if !ok || goal == nil {
			return ErrGoalNotFound
		}
		out = goal
		return nil
	})
	return out, err
}

// Poll returns poll id of owner.
func (e *Engine) Poll(owner [20]byte, id uint64) (*Poll, error) {
	var out *Poll
	err := e.view(func(st State) error {
		poll, ok, err := st.PollGet(owner, id)
		if err != nil {
			return err
		}
		if !ok || poll == nil {
			return ErrPollNotFound
		}
		out = poll
		return nil
	})
	return out, err
}

// ContentGate returns gate id of owner.
func (e *Engine) ContentGate(owner [20]byte, id uint64) (*ContentGate, error) {
	var out *ContentGate
	err := e.view(func(st State) (err error) {
		out, err = loadGate(st, owner, id)
		return err
	})
	return out, err
}

// Referral returns the referral of referrer towards referee.
func (e *Engine) Referral(referrer, referee [20]byte) (*Referral, error) {
	var out *Referral
	err := e.view(func(st State) error {
		referral, ok, err := st.ReferralGet(referrer, referee)
		if err != nil {
			return err
		}
		if !ok || referral == nil {
			return ErrReferralNotFound
		}
		out = referral
		return nil
	})
	return out, err
}

// Platform returns the global configuration.
func (e *Engine) Platform() (*PlatformConfig, error) {
	var out *PlatformConfig
	err := e.view(func(st State) (err error) {
		out, err = loadPlatform(st)
		return err
	})
	return out, err
}

// Balance returns the native balance of addr.
func (e *Engine) Balance(addr [20]byte) (uint64, error) {
	var out uint64
	err := e.view(func(st State) (err error) {
		out, err = st.Balance(addr)
		return err
	})
	return out, err
}

// TokenBalance returns the token balance of addr.
func (e *Engine) TokenBalance(addr, token [20]byte) (uint64, error) {
	var out uint64
	err := e.view(func(st State) (err error) {
		out, err = st.TokenBalance(addr, token)
		return err
	})
	return out, err
}

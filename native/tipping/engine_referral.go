package tipping

import "context"

// RegisterReferral records that referrer brought referee to the platform. The
// referee's profile is linked to the first registered referrer.
func (e *Engine) RegisterReferral(ctx context.Context, referrer, referee [20]byte, feeShareBps uint16) (*Referral, error) {
	var out *Referral
	err := e.execute(ctx, "register_referral", [][20]byte{referrer, referee}, func(s *opScope) error {
		referral, err := newReferral(referrer, referee, feeShareBps, s.now)
		if err != nil {
			return err
		}
		if _, err := loadProfile(s.tx, referrer); err != nil {
			return err
		}
		profile, err := loadProfile(s.tx, referee)
		if err != nil {
			return err
		}
		if _, ok, err := s.tx.ReferralGet(referrer, referee); err != nil {
			return err
		} else if ok {
			return ErrAccountAlreadyExists
		}
		if err := s.tx.ReferralPut(referral); err != nil {
			return err
		}
		if profile.Referrer == ([20]byte{}) {
			profile.Referrer = referrer
			profile.UpdatedAt = s.now
			if err := s.tx.ProfilePut(profile); err != nil {
				return err
			}
		}
		s.emit(newEvent(EventTypeReferralRegistered, s.now, map[string]string{
			"referrer":    addr(referrer),
			"referee":     addr(referee),
			"feeShareBps": u64(uint64(feeShareBps)),
			"linked":      flag(profile.Referrer == referrer),
		}))
		out = referral
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeactivateReferral stops future earnings. Only the referrer may deactivate.
func (e *Engine) DeactivateReferral(ctx context.Context, caller, referrer, referee [20]byte) (*Referral, error) {
	var out *Referral
	err := e.execute(ctx, "deactivate_referral", [][20]byte{referrer, referee}, func(s *opScope) error {
		if caller != referrer {
			return ErrNotReferrer
		}
		referral, ok, err := s.tx.ReferralGet(referrer, referee)
		if err != nil {
			return err
		}
		if !ok || referral == nil {
			return ErrReferralNotFound
		}
		if err := referral.Deactivate(); err != nil {
			return err
		}
		if err := s.tx.ReferralPut(referral); err != nil {
			return err
		}
		profile, ok, err := s.tx.ProfileGet(referee)
		if err != nil {
			return err
		}
		if ok && profile.Referrer == referrer {
			profile.Referrer = [20]byte{}
			profile.UpdatedAt = s.now
			if err := s.tx.ProfilePut(profile); err != nil {
				return err
			}
		}
		s.emit(newEvent(EventTypeReferralDeactivated, s.now, map[string]string{
			"referrer":    addr(referrer),
			"referee":     addr(referee),
			"totalEarned": u64(referral.TotalEarned),
		}))
		out = referral
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordReferralEarning credits an externally settled referral fee to the
// referral's tally. Admin only; no balance moves.
func (e *Engine) RecordReferralEarning(ctx context.Context, admin, referrer, referee [20]byte, amount uint64) (*Referral, error) {
	var out *Referral
	err := e.execute(ctx, "record_referral_earning", [][20]byte{referrer, referee}, func(s *opScope) error {
		cfg, err := loadPlatform(s.tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, admin); err != nil {
			return err
		}
		referral, ok, err := s.tx.ReferralGet(referrer, referee)
		if err != nil {
			return err
		}
		if !ok || referral == nil {
			return ErrReferralNotFound
		}
		if err := referral.RecordEarning(amount); err != nil {
			return err
		}
		if err := s.tx.ReferralPut(referral); err != nil {
			return err
		}
		s.emit(ReferralEarnedEvent(referral, amount, s.now))
		out = referral
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

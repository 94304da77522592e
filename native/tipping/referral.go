package tipping

func newReferral(referrer, referee [20]byte, feeShareBps uint16, now uint64) (*Referral, error) {
	if referrer == referee {
		return nil, ErrCannotReferSelf
	}
	if feeShareBps > MaxReferralFeeBps {
		return nil, ErrInvalidReferralFee
	}
	return &Referral{
		Referrer:    referrer,
		Referee:     referee,
		FeeShareBps: feeShareBps,
		Active:      true,
		CreatedAt:   now,
	}, nil
}

// RecordEarning credits one fee payment to the referrer's tally.
func (r *Referral) RecordEarning(amount uint64) error {
	if !r.Active {
		return ErrReferralNotActive
	}
	earned, err := addUint64(r.TotalEarned, amount)
	if err != nil {
		return err
	}
	count, err := addUint64(r.PaymentCount, 1)
	if err != nil {
		return err
	}
	r.TotalEarned = earned
	r.PaymentCount = count
	return nil
}

// Deactivate stops future earnings.
func (r *Referral) Deactivate() error {
	if !r.Active {
		return ErrReferralNotActive
	}
	r.Active = false
	return nil
}

package tipping

func newSubscription(subscriber, profile, token [20]byte, amount, interval, now uint64) (*Subscription, error) {
	if amount == 0 {
		return nil, ErrInvalidSubscriptionValue
	}
	if interval < MinSubscriptionGap {
		return nil, ErrInvalidSubscriptionGap
	}
	nextDue, err := addUint64(now, interval)
	if err != nil {
		return nil, err
	}
	return &Subscription{
		Subscriber: subscriber,
		Profile:    profile,
		Amount:     amount,
		Interval:   interval,
		NextDue:    nextDue,
		AutoRenew:  true,
		Active:     true,
		Token:      token,
		CreatedAt:  now,
	}, nil
}

// IsToken reports whether payments settle in a secondary token.
func (s *Subscription) IsToken() bool {
	return s.Token != [20]byte{}
}

// ProcessPayment advances the billing state machine for one due payment.
func (s *Subscription) ProcessPayment(now uint64) error {
	if !s.Active {
		return ErrSubscriptionNotActive
	}
	if now < s.NextDue {
		return ErrSubscriptionNotDue
	}
	paid, err := addUint64(s.TotalPaid, s.Amount)
	if err != nil {
		return err
	}
	count, err := addUint64(s.PaymentCount, 1)
	if err != nil {
		return err
	}
	nextDue := s.NextDue
	if s.AutoRenew {
		if nextDue, err = addUint64(nextDue, s.Interval); err != nil {
			return err
		}
	}
	s.TotalPaid = paid
	s.PaymentCount = count
	s.LastPaymentAt = now
	s.NextDue = nextDue
	if !s.AutoRenew {
		s.Active = false
	}
	return nil
}

// Cancel stops future payments.
func (s *Subscription) Cancel() error {
	if !s.Active {
		return ErrSubscriptionNotActive
	}
	s.Active = false
	return nil
}

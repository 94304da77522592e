package tipping

// Limits tunes the per-(payer, profile) admission control.
type Limits struct {
	// Cooldown is the minimum number of seconds between two actions.
	Cooldown uint64
	// MaxPerDay caps actions inside one 24h window.
	MaxPerDay uint64
}

// DefaultLimits returns the production cooldown and daily cap.
func DefaultLimits() Limits {
	return Limits{Cooldown: DefaultTipCooldown, MaxPerDay: DefaultMaxTipsPerDay}
}

func (l Limits) normalize() Limits {
	if l.MaxPerDay == 0 {
		l.MaxPerDay = DefaultMaxTipsPerDay
	}
	return l
}

func newRateLimit(payer, profile [20]byte, now uint64) *RateLimit {
	return &RateLimit{
		Payer:         payer,
		Profile:       profile,
		LastActionAt:  now,
		CountInWindow: 1,
		WindowStart:   now,
	}
}

// CheckAndRecord admits one action at now or reports why it is refused. The
// record is only mutated on success.
func (r *RateLimit) CheckAndRecord(now uint64, limits Limits) error {
	limits = limits.normalize()
	count := r.CountInWindow
	windowStart := r.WindowStart
	if saturatingSub(now, windowStart) >= SecondsPerDay {
		count = 0
		windowStart = now
	}
	if now < r.LastActionAt || now-r.LastActionAt < limits.Cooldown {
		return ErrRateLimitExceeded
	}
	if count >= limits.MaxPerDay {
		return ErrDailyLimitExceeded
	}
	r.WindowStart = windowStart
	r.CountInWindow = count + 1
	r.LastActionAt = now
	return nil
}

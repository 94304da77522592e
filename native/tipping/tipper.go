package tipping

func newTipperRecord(tipper, profile [20]byte, now uint64) *TipperRecord {
	return &TipperRecord{
		Tipper:     tipper,
		Profile:    profile,
		FirstTipAt: now,
		WeekStart:  now,
		MonthStart: now,
	}
}

// RecordTip folds amount into the cumulative and windowed totals.
func (r *TipperRecord) RecordTip(amount, now uint64) error {
	total, err := addUint64(r.TotalAmount, amount)
	if err != nil {
		return err
	}
	count, err := addUint64(r.TipCount, 1)
	if err != nil {
		return err
	}
	weekly, weekStart, err := rollWindow(r.WeeklyAmount, r.WeekStart, amount, now, SecondsPerWeek)
	if err != nil {
		return err
	}
	monthly, monthStart, err := rollWindow(r.MonthlyAmount, r.MonthStart, amount, now, SecondsPerMonth)
	if err != nil {
		return err
	}
	if r.TipCount == 0 && r.FirstTipAt == 0 {
		r.FirstTipAt = now
	}
	r.TotalAmount = total
	r.TipCount = count
	r.LastTipAt = now
	r.WeeklyAmount, r.WeekStart = weekly, weekStart
	r.MonthlyAmount, r.MonthStart = monthly, monthStart
	if tier := BadgeFor(total); tier > r.Badge {
		r.Badge = tier
	}
	return nil
}

func rollWindow(current, start, amount, now, span uint64) (uint64, uint64, error) {
	if saturatingSub(now, start) >= span {
		return amount, now, nil
	}
	next, err := addUint64(current, amount)
	if err != nil {
		return 0, 0, err
	}
	return next, start, nil
}

// BadgeFor maps a cumulative total onto the fixed tier thresholds.
func BadgeFor(total uint64) BadgeTier {
	switch {
	case total >= DiamondThreshold:
		return BadgeDiamond
	case total >= GoldThreshold:
		return BadgeGold
	case total >= SilverThreshold:
		return BadgeSilver
	case total >= BronzeThreshold:
		return BadgeBronze
	default:
		return BadgeNone
	}
}

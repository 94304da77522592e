package tipping

// ProfileParams carries the identity fields of a new profile.
type ProfileParams struct {
	Username    string
	DisplayName string
	Description string
	ImageURL    string
}

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	DisplayName      *string
	Description      *string
	ImageURL         *string
	MinTipAmount     *uint64
	WithdrawalFeeBps *uint16
	AcceptAnonymous  *bool
}

// ExtendedUpdate changes the optional presentation settings. A nil
// PresetAmounts leaves presets untouched; an empty non-nil slice clears them.
type ExtendedUpdate struct {
	PresetAmounts []uint64
	SocialLinks   *string
	WebhookURL    *string
}

func newProfile(owner [20]byte, params ProfileParams, now uint64) (*Profile, error) {
	if err := ValidateUsername(params.Username); err != nil {
		return nil, err
	}
	profile := &Profile{
		Owner:            owner,
		Username:         params.Username,
		MinTipAmount:     MinTipAmount,
		WithdrawalFeeBps: DefaultWithdrawalFeeBps,
		AcceptAnonymous:  true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	display := NormalizeText(params.DisplayName)
	if err := validateText(display, MaxDisplayNameLength, ErrDisplayNameTooLong, true); err != nil {
		return nil, err
	}
	description := NormalizeText(params.Description)
	if err := validateText(description, MaxDescriptionLength, ErrDescriptionTooLong, true); err != nil {
		return nil, err
	}
	image := NormalizeText(params.ImageURL)
	if err := validateText(image, MaxImageURLLength, ErrImageURLTooLong, false); err != nil {
		return nil, err
	}
	profile.DisplayName = display
	profile.Description = description
	profile.ImageURL = image
	return profile, nil
}

// Apply validates every set field before mutating any of them.
func (p *Profile) Apply(update ProfileUpdate, now uint64) error {
	next := *p
	if update.DisplayName != nil {
		display := NormalizeText(*update.DisplayName)
		if err := validateText(display, MaxDisplayNameLength, ErrDisplayNameTooLong, true); err != nil {
			return err
		}
		next.DisplayName = display
	}
	if update.Description != nil {
		description := NormalizeText(*update.Description)
		if err := validateText(description, MaxDescriptionLength, ErrDescriptionTooLong, true); err != nil {
			return err
		}
		next.Description = description
	}
	if update.ImageURL != nil {
		image := NormalizeText(*update.ImageURL)
		if err := validateText(image, MaxImageURLLength, ErrImageURLTooLong, false); err != nil {
			return err
		}
		next.ImageURL = image
	}
	if update.MinTipAmount != nil {
		floor := *update.MinTipAmount
		if floor < MinTipAmount || floor > MaxTipAmount {
			return ErrInvalidMinTipAmount
		}
		next.MinTipAmount = floor
	}
	if update.WithdrawalFeeBps != nil {
		if *update.WithdrawalFeeBps > MaxWithdrawalFeeBps {
			return ErrInvalidWithdrawalFee
		}
		next.WithdrawalFeeBps = *update.WithdrawalFeeBps
	}
	if update.AcceptAnonymous != nil {
		next.AcceptAnonymous = *update.AcceptAnonymous
	}
	next.UpdatedAt = now
	*p = next
	return nil
}

// ApplyExtended validates and applies presentation settings.
func (p *Profile) ApplyExtended(update ExtendedUpdate, now uint64) error {
	if update.PresetAmounts != nil {
		if len(update.PresetAmounts) > MaxPresetAmounts {
			return ErrTooManyPresetAmounts
		}
		for _, amount := range update.PresetAmounts {
			if amount < MinTipAmount || amount > MaxTipAmount {
				return ErrInvalidPresetAmount
			}
		}
	}
	var links, webhook string
	if update.SocialLinks != nil {
		links = NormalizeText(*update.SocialLinks)
		if err := validateText(links, MaxSocialLinksLength, ErrSocialLinksTooLong, false); err != nil {
			return err
		}
	}
	if update.WebhookURL != nil {
		webhook = NormalizeText(*update.WebhookURL)
		if err := validateText(webhook, MaxWebhookURLLength, ErrWebhookURLTooLong, false); err != nil {
			return err
		}
	}
	if update.PresetAmounts != nil {
		p.PresetAmounts = append([]uint64(nil), update.PresetAmounts...)
	}
	if update.SocialLinks != nil {
		p.SocialLinks = links
	}
	if update.WebhookURL != nil {
		p.WebhookURL = webhook
	}
	p.UpdatedAt = now
	return nil
}

// AcquireGuard marks the profile as mid-mutation.
func (p *Profile) AcquireGuard() error {
	if p.Guard {
		return ErrReentrancyDetected
	}
	p.Guard = true
	return nil
}

// ReleaseGuard clears the mutation marker.
func (p *Profile) ReleaseGuard() {
	p.Guard = false
}

// ValidateTipAmount applies the profile floor and the global ceiling.
func (p *Profile) ValidateTipAmount(amount uint64) error {
	if amount < p.MinTipAmount {
		return ErrTipAmountTooSmall
	}
	return ValidateTipBounds(amount)
}

// RecordTip updates native aggregates and the leaderboard.
func (p *Profile) RecordTip(tipper [20]byte, amount uint64, isNew bool) error {
	count, err := addUint64(p.TipCount, 1)
	if err != nil {
		return err
	}
	total, err := addUint64(p.TotalReceived, amount)
	if err != nil {
		return err
	}
	unique := p.UniqueTippers
	if isNew {
		if unique, err = addUint64(unique, 1); err != nil {
			return err
		}
	}
	p.TipCount = count
	p.TotalReceived = total
	p.UniqueTippers = unique
	p.Leaderboard = upsertLeaderboard(p.Leaderboard, tipper, amount, isNew)
	return nil
}

// RecordTokenTip updates only the secondary-token aggregates.
func (p *Profile) RecordTokenTip(amount uint64) error {
	count, err := addUint64(p.TipCount, 1)
	if err != nil {
		return err
	}
	total, err := addUint64(p.TotalReceivedToken, amount)
	if err != nil {
		return err
	}
	p.TipCount = count
	p.TotalReceivedToken = total
	return nil
}

func incrementCounter(counter *uint8, max int, exhausted *Error) error {
	if int(*counter) >= max {
		return exhausted
	}
	*counter++
	return nil
}

func decrementCounter(counter *uint8) error {
	if *counter == 0 {
		return ErrMathUnderflow
	}
	*counter--
	return nil
}

func (p *Profile) openGoal() error  { return incrementCounter(&p.ActiveGoals, MaxActiveGoals, ErrMaxActiveGoals) }
func (p *Profile) closeGoal() error { return decrementCounter(&p.ActiveGoals) }
func (p *Profile) openPoll() error  { return incrementCounter(&p.ActivePolls, MaxActivePolls, ErrMaxActivePolls) }
func (p *Profile) closePoll() error { return decrementCounter(&p.ActivePolls) }
func (p *Profile) openGate() error  { return incrementCounter(&p.ActiveGates, MaxActiveGates, ErrMaxActiveGates) }
func (p *Profile) closeGate() error { return decrementCounter(&p.ActiveGates) }

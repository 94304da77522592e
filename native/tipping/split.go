package tipping

// validateRecipients checks count, labels, duplicates and the bps total.
func validateRecipients(recipients []SplitRecipient) error {
	if len(recipients) < MinSplitRecipients || len(recipients) > MaxSplitRecipients {
		return ErrTooManySplitRecipients
	}
	seen := make(map[[20]byte]struct{}, len(recipients))
	shares := make([]uint16, len(recipients))
	for i, recipient := range recipients {
		if recipient.Wallet == ([20]byte{}) {
			return ErrInvalidSplitWallet
		}
		if _, dup := seen[recipient.Wallet]; dup {
			return ErrDuplicateSplitRecipient
		}
		seen[recipient.Wallet] = struct{}{}
		if err := validateText(recipient.Label, MaxSplitLabelLength, ErrUnsafeTextContent, true); err != nil {
			return err
		}
		shares[i] = recipient.ShareBps
	}
	return ValidateSplitBps(shares)
}

// Configure replaces the recipient set after validation.
func (s *TipSplit) Configure(recipients []SplitRecipient, now uint64) error {
	normalized := make([]SplitRecipient, len(recipients))
	for i, recipient := range recipients {
		recipient.Label = NormalizeText(recipient.Label)
		normalized[i] = recipient
	}
	if err := validateRecipients(normalized); err != nil {
		return err
	}
	s.Recipients = normalized
	s.Active = true
	s.UpdatedAt = now
	return nil
}

// Shares computes each recipient's portion of total in stored order.
func (s *TipSplit) Shares(total uint64) ([]uint64, error) {
	bps := make([]uint16, len(s.Recipients))
	for i, recipient := range s.Recipients {
		bps[i] = recipient.ShareBps
	}
	return CalculateShares(total, bps)
}

// Matches reports whether wallets equal the configured recipients in order.
func (s *TipSplit) Matches(wallets [][20]byte) bool {
	if len(wallets) != len(s.Recipients) {
		return false
	}
	for i, wallet := range wallets {
		if s.Recipients[i].Wallet != wallet {
			return false
		}
	}
	return true
}

package tipping

import "lukechampine.com/blake3"

// GateParams describes a new content gate. ContentURL is hashed, never stored.
type GateParams struct {
	ID             uint64
	Title          string
	ContentURL     string
	RequiredAmount uint64
}

// ContentHash returns the stored reference for a content URL.
func ContentHash(url string) [32]byte {
	return blake3.Sum256([]byte(url))
}

func newContentGate(profile [20]byte, params GateParams, now uint64) (*ContentGate, error) {
	title := NormalizeText(params.Title)
	if err := validateText(title, MaxContentTitleLength, ErrContentTitleTooLong, true); err != nil {
		return nil, err
	}
	url := NormalizeText(params.ContentURL)
	if err := validateText(url, MaxContentURLLength, ErrContentURLTooLong, false); err != nil {
		return nil, err
	}
	if params.RequiredAmount == 0 {
		return nil, ErrInvalidRequiredAmount
	}
	return &ContentGate{
		Profile:        profile,
		ID:             params.ID,
		Title:          title,
		ContentHash:    ContentHash(url),
		RequiredAmount: params.RequiredAmount,
		Active:         true,
		CreatedAt:      now,
	}, nil
}

// CheckAccess compares a requester's cumulative tips with the requirement.
func (g *ContentGate) CheckAccess(totalTipped uint64) (bool, error) {
	if !g.Active {
		return false, ErrContentGateNotActive
	}
	return totalTipped >= g.RequiredAmount, nil
}

// RecordAccess counts one granted access.
func (g *ContentGate) RecordAccess() error {
	count, err := addUint64(g.AccessCount, 1)
	if err != nil {
		return err
	}
	g.AccessCount = count
	return nil
}

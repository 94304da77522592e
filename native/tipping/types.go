package tipping

// Profile is the creator record: identity, aggregate stats, guard and
// leaderboard. One per owner identity.
type Profile struct {
	Owner              [20]byte
	Username           string
	DisplayName        string
	Description        string
	ImageURL           string
	TipCount           uint64
	TotalReceived      uint64
	TotalReceivedToken uint64
	UniqueTippers      uint64
	MinTipAmount       uint64
	WithdrawalFeeBps   uint16
	AcceptAnonymous    bool
	Verified           bool
	Guard              bool
	ActiveGoals        uint8
	ActivePolls        uint8
	ActiveGates        uint8
	Leaderboard        []LeaderboardEntry
	PresetAmounts      []uint64
	SocialLinks        string
	WebhookURL         string
	Referrer           [20]byte
	CreatedAt          uint64
	UpdatedAt          uint64
}

// LeaderboardEntry is one payer's standing on a profile's top-N board.
type LeaderboardEntry struct {
	Tipper [20]byte
	Amount uint64
	Count  uint64
}

// Vault escrows native tips for a profile until withdrawal.
type Vault struct {
	Owner          [20]byte
	Balance        uint64
	TotalDeposited uint64
	TotalWithdrawn uint64
	CreatedAt      uint64
}

// RateLimit tracks a payer's cadence towards one profile.
type RateLimit struct {
	Payer         [20]byte
	Profile       [20]byte
	LastActionAt  uint64
	CountInWindow uint64
	WindowStart   uint64
}

// BadgeTier is a coarse reward level derived from cumulative tips.
type BadgeTier uint8

const (
	BadgeNone BadgeTier = iota
	BadgeBronze
	BadgeSilver
	BadgeGold
	BadgeDiamond
)

func (b BadgeTier) String() string {
	switch b {
	case BadgeBronze:
		return "bronze"
	case BadgeSilver:
		return "silver"
	case BadgeGold:
		return "gold"
	case BadgeDiamond:
		return "diamond"
	default:
		return "none"
	}
}

// TipperRecord accumulates everything one payer has sent one profile.
type TipperRecord struct {
	Tipper        [20]byte
	Profile       [20]byte
	TotalAmount   uint64
	TipCount      uint64
	FirstTipAt    uint64
	LastTipAt     uint64
	WeeklyAmount  uint64
	WeekStart     uint64
	MonthlyAmount uint64
	MonthStart    uint64
	Badge         BadgeTier
}

// SplitRecipient is one wallet of a multi-recipient split.
type SplitRecipient struct {
	Wallet   [20]byte
	ShareBps uint16
	Label    string
}

// TipSplit distributes split tips across a fixed, ordered set of wallets.
type TipSplit struct {
	Profile    [20]byte
	Active     bool
	Recipients []SplitRecipient
	UpdatedAt  uint64
}

// Subscription is a recurring payment from a subscriber to a profile.
type Subscription struct {
	Subscriber   [20]byte
	Profile      [20]byte
	Amount       uint64
	Interval     uint64
	NextDue      uint64
	AutoRenew    bool
	TotalPaid    uint64
	PaymentCount uint64
	Active       bool
	// Token is zero for native subscriptions.
	Token         [20]byte
	CreatedAt     uint64
	LastPaymentAt uint64
}

// Goal is a fundraising campaign owned by a profile.
type Goal struct {
	Profile            [20]byte
	ID                 uint64
	Title              string
	Description        string
	Target             uint64
	Current            uint64
	Deadline           uint64
	Completed          bool
	CompletedAt        uint64
	UniqueContributors uint64
	Closed             bool
	CreatedAt          uint64
}

// PollOption is one tip-weighted choice.
type PollOption struct {
	Label  string
	Votes  uint64
	Amount uint64
}

// Poll lets tippers vote with their tips.
type Poll struct {
	Profile     [20]byte
	ID          uint64
	Title       string
	Options     []PollOption
	TotalVotes  uint64
	TotalAmount uint64
	Deadline    uint64
	Active      bool
	CreatedAt   uint64
}

// ContentGate unlocks content for payers whose cumulative tips reach a threshold.
type ContentGate struct {
	Profile        [20]byte
	ID             uint64
	Title          string
	ContentHash    [32]byte
	RequiredAmount uint64
	AccessCount    uint64
	Active         bool
	CreatedAt      uint64
}

// Referral shares part of a referred profile's platform fees with the referrer.
type Referral struct {
	Referrer     [20]byte
	Referee      [20]byte
	FeeShareBps  uint16
	TotalEarned  uint64
	PaymentCount uint64
	Active       bool
	CreatedAt    uint64
}

// PlatformConfig is the single global administration record.
type PlatformConfig struct {
	Admin         [20]byte
	Treasury      [20]byte
	FeeBps        uint16
	Paused        bool
	RetainedFees  uint64
	InitializedAt uint64
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Leaderboard = append([]LeaderboardEntry(nil), p.Leaderboard...)
	clone.PresetAmounts = append([]uint64(nil), p.PresetAmounts...)
	return &clone
}

// Clone returns a deep copy of the split.
func (s *TipSplit) Clone() *TipSplit {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Recipients = append([]SplitRecipient(nil), s.Recipients...)
	return &clone
}

// Clone returns a deep copy of the poll.
func (p *Poll) Clone() *Poll {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Options = append([]PollOption(nil), p.Options...)
	return &clone
}

// IsPaused implements common.PauseView.
func (c *PlatformConfig) IsPaused(module string) bool {
	return c != nil && c.Paused && module == ModuleName
}

package tipping

// ModuleName is the pause-guard key for every monetized operation.
const ModuleName = "tipping"

// Text limits, in bytes.
const (
	MaxUsernameLength        = 32
	MaxDisplayNameLength     = 64
	MaxDescriptionLength     = 256
	MaxImageURLLength        = 200
	MaxMessageLength         = 280
	MaxGoalTitleLength       = 64
	MaxGoalDescriptionLength = 256
	MaxSplitLabelLength      = 32
	MaxPollTitleLength       = 64
	MaxPollOptionLength      = 32
	MaxContentTitleLength    = 64
	MaxContentURLLength      = 200
	MaxSocialLinksLength     = 512
	MaxWebhookURLLength      = 200
)

// Amounts in native units.
const (
	MinTipAmount        uint64 = 1_000
	MaxTipAmount        uint64 = 1_000_000_000_000
	MinWithdrawalAmount uint64 = 10_000_000
	MinReserve          uint64 = 1_000_000
)

// Fees in basis points.
const (
	BpsDenominator          uint64 = 10_000
	DefaultWithdrawalFeeBps uint16 = 200
	MaxWithdrawalFeeBps     uint16 = 1_000
	DefaultPlatformFeeBps   uint16 = 100
	MaxReferralFeeBps       uint16 = 2_000
)

// Bounded collections.
const (
	MaxLeaderboardEntries = 10
	MaxActiveGoals        = 5
	MaxActivePolls        = 3
	MaxActiveGates        = 10
	MinSplitRecipients    = 2
	MaxSplitRecipients    = 5
	MaxPresetAmounts      = 5
	MinPollOptions        = 2
	MaxPollOptions        = 4
)

// Time spans in seconds.
const (
	SecondsPerDay   uint64 = 86_400
	SecondsPerWeek  uint64 = 604_800
	SecondsPerMonth uint64 = 2_592_000
	MaxGoalDuration uint64 = 31_536_000

	DefaultTipCooldown   uint64 = 3
	DefaultMaxTipsPerDay uint64 = 100
	MinSubscriptionGap   uint64 = SecondsPerDay
)

// Badge thresholds on a tipper's cumulative total.
const (
	BronzeThreshold  uint64 = 100_000_000
	SilverThreshold  uint64 = 1_000_000_000
	GoldThreshold    uint64 = 10_000_000_000
	DiamondThreshold uint64 = 100_000_000_000
)

package tipping

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVaultReserveFloor(t *testing.T) {
	vault := &Vault{Owner: creatorID}
	require.NoError(t, vault.Deposit(MinReserve+500))
	require.Equal(t, uint64(500), vault.Withdrawable())

	require.ErrorIs(t, vault.Withdraw(MinReserve+501), ErrInsufficientBalance)
	require.ErrorIs(t, vault.Withdraw(501), ErrVaultBelowRentBuffer)
	require.NoError(t, vault.Withdraw(500))
	require.Equal(t, MinReserve, vault.Balance)
	require.Equal(t, uint64(500), vault.TotalWithdrawn)
	require.Equal(t, MinReserve+500, vault.TotalDeposited)
	require.Zero(t, vault.Withdrawable())
}

func TestRateLimitCooldownAndDailyCap(t *testing.T) {
	limits := DefaultLimits()
	start := uint64(1_000)
	limit := newRateLimit(tipperID, creatorID, start)

	require.ErrorIs(t, limit.CheckAndRecord(start+1, limits), ErrRateLimitExceeded)
	require.Equal(t, uint64(1), limit.CountInWindow, "failed check must not mutate")

	now := start
	for i := 1; i < int(DefaultMaxTipsPerDay); i++ {
		now += limits.Cooldown
		require.NoError(t, limit.CheckAndRecord(now, limits), "tip %d", i+1)
	}
	require.Equal(t, DefaultMaxTipsPerDay, limit.CountInWindow)
	now += limits.Cooldown
	require.ErrorIs(t, limit.CheckAndRecord(now, limits), ErrDailyLimitExceeded)

	now = start + SecondsPerDay
	require.NoError(t, limit.CheckAndRecord(now, limits))
	require.Equal(t, uint64(1), limit.CountInWindow)
	require.Equal(t, now, limit.WindowStart)
}

func TestRateLimitRejectsClockRegression(t *testing.T) {
	limit := newRateLimit(tipperID, creatorID, 5_000)
	require.ErrorIs(t, limit.CheckAndRecord(4_000, DefaultLimits()), ErrRateLimitExceeded)
}

func TestTipperRecordWindowsAndBadge(t *testing.T) {
	now := uint64(10_000)
	record := newTipperRecord(tipperID, creatorID, now)
	require.NoError(t, record.RecordTip(BronzeThreshold, now))
	require.Equal(t, BadgeBronze, record.Badge)
	require.Equal(t, BronzeThreshold, record.WeeklyAmount)

	require.NoError(t, record.RecordTip(5, now+SecondsPerWeek-1))
	require.Equal(t, BronzeThreshold+5, record.WeeklyAmount)

	later := now + SecondsPerWeek
	require.NoError(t, record.RecordTip(7, later))
	require.Equal(t, uint64(7), record.WeeklyAmount)
	require.Equal(t, later, record.WeekStart)
	require.Equal(t, BronzeThreshold+12, record.MonthlyAmount)

	require.NoError(t, record.RecordTip(SilverThreshold, later+SecondsPerMonth))
	require.Equal(t, BadgeSilver, record.Badge)
	require.Equal(t, SilverThreshold, record.MonthlyAmount)
	require.Equal(t, uint64(4), record.TipCount)
	require.Equal(t, now, record.FirstTipAt)
}

func TestBadgeThresholds(t *testing.T) {
	cases := map[uint64]BadgeTier{
		0:                    BadgeNone,
		BronzeThreshold - 1:  BadgeNone,
		BronzeThreshold:      BadgeBronze,
		SilverThreshold:      BadgeSilver,
		GoldThreshold:        BadgeGold,
		DiamondThreshold:     BadgeDiamond,
		DiamondThreshold * 9: BadgeDiamond,
	}
	for total, want := range cases {
		require.Equal(t, want, BadgeFor(total), "total %d", total)
	}
	require.Equal(t, "gold", BadgeGold.String())
}

func TestLeaderboardBoundedAndSorted(t *testing.T) {
	var board []LeaderboardEntry
	for i := 0; i < MaxLeaderboardEntries; i++ {
		board = upsertLeaderboard(board, ident(byte(0x10+i)), uint64(100*(i+1)), true)
	}
	require.Len(t, board, MaxLeaderboardEntries)
	require.Equal(t, uint64(1_000), board[0].Amount)
	require.Equal(t, uint64(100), board[len(board)-1].Amount)

	board = upsertLeaderboard(board, ident(0x50), 50, true)
	require.Len(t, board, MaxLeaderboardEntries)
	for _, entry := range board {
		require.NotEqual(t, ident(0x50), entry.Tipper, "smaller newcomer displaced an entry")
	}

	board = upsertLeaderboard(board, ident(0x51), 150, true)
	require.Len(t, board, MaxLeaderboardEntries)
	require.Equal(t, uint64(150), board[len(board)-1].Amount)

	board = upsertLeaderboard(board, ident(0x11), 5_000, false)
	require.Equal(t, ident(0x11), board[0].Tipper)
	require.Equal(t, uint64(5_200), board[0].Amount)
	require.Equal(t, uint64(2), board[0].Count)

	for i := 1; i < len(board); i++ {
		require.GreaterOrEqual(t, board[i-1].Amount, board[i].Amount)
	}
}

func TestProfileGuardAndCounters(t *testing.T) {
	profile := &Profile{Owner: creatorID, MinTipAmount: MinTipAmount}
	require.NoError(t, profile.AcquireGuard())
	require.ErrorIs(t, profile.AcquireGuard(), ErrReentrancyDetected)
	profile.ReleaseGuard()
	require.NoError(t, profile.AcquireGuard())

	require.ErrorIs(t, profile.closePoll(), ErrMathUnderflow)
	for i := 0; i < MaxActivePolls; i++ {
		require.NoError(t, profile.openPoll())
	}
	require.ErrorIs(t, profile.openPoll(), ErrMaxActivePolls)
	require.NoError(t, profile.closePoll())
	require.NoError(t, profile.openPoll())
}

func TestProfileTipValidation(t *testing.T) {
	profile := &Profile{MinTipAmount: 5_000}
	require.ErrorIs(t, profile.ValidateTipAmount(4_999), ErrTipAmountTooSmall)
	require.NoError(t, profile.ValidateTipAmount(5_000))
	require.ErrorIs(t, profile.ValidateTipAmount(MaxTipAmount+1), ErrTipAmountTooLarge)
}

func TestProfileApplyIsAllOrNothing(t *testing.T) {
	profile, err := newProfile(creatorID, ProfileParams{Username: "bob", DisplayName: "Bob"}, 1)
	require.NoError(t, err)
	name := "Robert"
	fee := MaxWithdrawalFeeBps + 1
	err = profile.Apply(ProfileUpdate{DisplayName: &name, WithdrawalFeeBps: &fee}, 2)
	require.ErrorIs(t, err, ErrInvalidWithdrawalFee)
	require.Equal(t, "Bob", profile.DisplayName)

	floor := uint64(10)
	require.ErrorIs(t, profile.Apply(ProfileUpdate{MinTipAmount: &floor}, 2), ErrInvalidMinTipAmount)

	require.ErrorIs(t, profile.ApplyExtended(ExtendedUpdate{PresetAmounts: make([]uint64, MaxPresetAmounts+1)}, 3), ErrTooManyPresetAmounts)
	require.ErrorIs(t, profile.ApplyExtended(ExtendedUpdate{PresetAmounts: []uint64{1}}, 3), ErrInvalidPresetAmount)
	require.NoError(t, profile.ApplyExtended(ExtendedUpdate{PresetAmounts: []uint64{MinTipAmount, 2 * MinTipAmount}}, 3))
	require.Len(t, profile.PresetAmounts, 2)
}

func TestUsernameValidation(t *testing.T) {
	require.NoError(t, ValidateUsername("creator_42"))
	require.ErrorIs(t, ValidateUsername(""), ErrEmptyUsername)
	require.ErrorIs(t, ValidateUsername("Upper"), ErrInvalidUsername)
	require.ErrorIs(t, ValidateUsername("has space"), ErrInvalidUsername)
	require.ErrorIs(t, ValidateUsername("abcdefghijklmnopqrstuvwxyz0123456"), ErrUsernameTooLong)
}

func TestTextSafety(t *testing.T) {
	require.True(t, IsSafeText("thanks for the stream!"))
	for _, bad := range []string{"<script>", "a > b", "fish & chips"} {
		require.ErrorIs(t, ValidateMessage(bad), ErrUnsafeTextContent, bad)
	}
	long := make([]byte, MaxMessageLength+1)
	for i := range long {
		long[i] = 'x'
	}
	require.ErrorIs(t, ValidateMessage(string(long)), ErrMessageTooLong)
	require.Equal(t, "é", NormalizeText("  é "))
}

func TestSplitConfigure(t *testing.T) {
	split := &TipSplit{Profile: creatorID}
	require.ErrorIs(t, split.Configure([]SplitRecipient{{Wallet: ident(1), ShareBps: 10_000}}, 1), ErrTooManySplitRecipients)
	require.ErrorIs(t, split.Configure([]SplitRecipient{
		{Wallet: ident(1), ShareBps: 5_000},
		{Wallet: ident(1), ShareBps: 5_000},
	}, 1), ErrDuplicateSplitRecipient)
	require.ErrorIs(t, split.Configure([]SplitRecipient{
		{Wallet: [20]byte{}, ShareBps: 5_000},
		{Wallet: ident(2), ShareBps: 5_000},
	}, 1), ErrInvalidSplitWallet)
	require.False(t, split.Active)
	require.ErrorIs(t, split.Configure([]SplitRecipient{
		{Wallet: ident(1), ShareBps: 5_000},
		{Wallet: ident(2), ShareBps: 4_000},
	}, 1), ErrInvalidSplitBps)
	require.NoError(t, split.Configure([]SplitRecipient{
		{Wallet: ident(1), ShareBps: 7_000, Label: " host "},
		{Wallet: ident(2), ShareBps: 3_000, Label: "editor"},
	}, 1))
	require.True(t, split.Active)
	require.Equal(t, "host", split.Recipients[0].Label)
	require.True(t, split.Matches([][20]byte{ident(1), ident(2)}))
	require.False(t, split.Matches([][20]byte{ident(2), ident(1)}))
	require.False(t, split.Matches([][20]byte{ident(1)}))
}

func TestGoalCompletesOnce(t *testing.T) {
	goal, err := newGoal(creatorID, GoalParams{ID: 1, Title: "New mic", Target: 1_000}, 100)
	require.NoError(t, err)
	require.NoError(t, goal.AddContribution(600, true, 101))
	require.False(t, goal.Completed)
	require.Equal(t, uint64(6_000), goal.CompletionBps())

	require.NoError(t, goal.AddContribution(400, false, 102))
	require.True(t, goal.Completed)
	require.Equal(t, uint64(102), goal.CompletedAt)
	require.Equal(t, uint64(1), goal.UniqueContributors)
	require.Equal(t, BpsDenominator, goal.CompletionBps())

	require.ErrorIs(t, goal.AddContribution(1, true, 103), ErrGoalAlreadyCompleted)
	require.Equal(t, uint64(102), goal.CompletedAt)
}

func TestGoalValidation(t *testing.T) {
	now := uint64(1_000)
	_, err := newGoal(creatorID, GoalParams{Title: "x", Target: 0}, now)
	require.ErrorIs(t, err, ErrInvalidGoalAmount)
	_, err = newGoal(creatorID, GoalParams{Title: "x", Target: 1, Deadline: now}, now)
	require.ErrorIs(t, err, ErrInvalidGoalDeadline)
	_, err = newGoal(creatorID, GoalParams{Title: "x", Target: 1, Deadline: now + MaxGoalDuration + 1}, now)
	require.ErrorIs(t, err, ErrGoalDurationTooLong)

	goal, err := newGoal(creatorID, GoalParams{Title: "x", Target: 10, Deadline: now + 10}, now)
	require.NoError(t, err)
	require.ErrorIs(t, goal.AddContribution(1, true, now+11), ErrGoalDeadlineExpired)
}

func TestPollVotingAndWinner(t *testing.T) {
	poll, err := newPoll(creatorID, PollParams{ID: 1, Title: "Next game", Options: []string{"a", "b", "c"}}, 10)
	require.NoError(t, err)
	require.NoError(t, poll.Vote(1, 500, 11))
	require.NoError(t, poll.Vote(2, 500, 12))
	require.NoError(t, poll.Vote(0, 100, 13))
	require.NoError(t, poll.Vote(0, 100, 14))
	require.Equal(t, 1, poll.Winner(), "ties go to the earliest option")
	require.Equal(t, uint64(4), poll.TotalVotes)
	require.Equal(t, uint64(1_200), poll.TotalAmount)
	require.Equal(t, uint64(2), poll.Options[0].Votes)

	require.ErrorIs(t, poll.Vote(3, 1, 15), ErrInvalidPollOption)
	require.ErrorIs(t, poll.Vote(-1, 1, 15), ErrInvalidPollOption)
	poll.Active = false
	require.ErrorIs(t, poll.Vote(0, 1, 15), ErrPollNotActive)
}

func TestPollValidation(t *testing.T) {
	_, err := newPoll(creatorID, PollParams{Title: "t", Options: []string{"only"}}, 10)
	require.ErrorIs(t, err, ErrTooFewPollOptions)
	_, err = newPoll(creatorID, PollParams{Title: "t", Options: []string{"a", "b", "c", "d", "e"}}, 10)
	require.ErrorIs(t, err, ErrTooManyPollOptions)
	_, err = newPoll(creatorID, PollParams{Title: "t", Options: []string{"a", "b"}, Deadline: 10}, 10)
	require.ErrorIs(t, err, ErrInvalidPollDeadline)

	poll, err := newPoll(creatorID, PollParams{Title: "t", Options: []string{"a", "b"}, Deadline: 20}, 10)
	require.NoError(t, err)
	require.ErrorIs(t, poll.Vote(0, 1, 21), ErrPollDeadlineExpired)
}

func TestContentGateThreshold(t *testing.T) {
	gate, err := newContentGate(creatorID, GateParams{ID: 1, Title: "Bonus", ContentURL: "https://example.org/v", RequiredAmount: 1_000}, 5)
	require.NoError(t, err)
	require.Equal(t, ContentHash("https://example.org/v"), gate.ContentHash)

	granted, err := gate.CheckAccess(999)
	require.NoError(t, err)
	require.False(t, granted)
	granted, err = gate.CheckAccess(1_000)
	require.NoError(t, err)
	require.True(t, granted)

	require.NoError(t, gate.RecordAccess())
	require.Equal(t, uint64(1), gate.AccessCount)

	gate.Active = false
	_, err = gate.CheckAccess(5_000)
	require.ErrorIs(t, err, ErrContentGateNotActive)

	_, err = newContentGate(creatorID, GateParams{Title: "t", ContentURL: "u"}, 5)
	require.ErrorIs(t, err, ErrInvalidRequiredAmount)
}

func TestSubscriptionStateMachine(t *testing.T) {
	now := uint64(1_000)
	_, err := newSubscription(tipperID, creatorID, [20]byte{}, 0, SecondsPerDay, now)
	require.ErrorIs(t, err, ErrInvalidSubscriptionValue)
	_, err = newSubscription(tipperID, creatorID, [20]byte{}, 1, SecondsPerDay-1, now)
	require.ErrorIs(t, err, ErrInvalidSubscriptionGap)

	sub, err := newSubscription(tipperID, creatorID, [20]byte{}, 50, SecondsPerDay, now)
	require.NoError(t, err)
	require.False(t, sub.IsToken())
	require.ErrorIs(t, sub.ProcessPayment(now+SecondsPerDay-1), ErrSubscriptionNotDue)

	due := now + SecondsPerDay
	require.NoError(t, sub.ProcessPayment(due))
	require.True(t, sub.Active)
	require.Equal(t, due+SecondsPerDay, sub.NextDue)
	require.Equal(t, uint64(50), sub.TotalPaid)

	sub.AutoRenew = false
	require.NoError(t, sub.ProcessPayment(sub.NextDue))
	require.False(t, sub.Active)
	require.Equal(t, uint64(2), sub.PaymentCount)
	require.ErrorIs(t, sub.ProcessPayment(sub.NextDue), ErrSubscriptionNotActive)
	require.ErrorIs(t, sub.Cancel(), ErrSubscriptionNotActive)
}

func TestReferralLifecycle(t *testing.T) {
	_, err := newReferral(otherID, otherID, 100, 1)
	require.ErrorIs(t, err, ErrCannotReferSelf)
	_, err = newReferral(otherID, creatorID, MaxReferralFeeBps+1, 1)
	require.ErrorIs(t, err, ErrInvalidReferralFee)

	referral, err := newReferral(otherID, creatorID, MaxReferralFeeBps, 1)
	require.NoError(t, err)
	require.NoError(t, referral.RecordEarning(40))
	require.NoError(t, referral.RecordEarning(2))
	require.Equal(t, uint64(42), referral.TotalEarned)
	require.Equal(t, uint64(2), referral.PaymentCount)
	require.NoError(t, referral.Deactivate())
	require.ErrorIs(t, referral.RecordEarning(1), ErrReferralNotActive)
	require.ErrorIs(t, referral.Deactivate(), ErrReferralNotActive)
}

package tipping

import (
	"errors"
	"fmt"
)

// Kind groups ledger failures by how a caller should react to them.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindConflict
	KindArithmetic
	KindExhausted
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindArithmetic:
		return "arithmetic"
	case KindExhausted:
		return "exhausted"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a typed ledger failure. Code is stable and safe to surface to
// untrusted callers; Message is a human readable description.
type Error struct {
	Code    string
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tipping: %s", e.Message)
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

// CodeOf returns the stable code of a ledger failure or "Internal".
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}
	return "Internal"
}

// KindOf classifies err. Untyped errors are internal.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindInternal
}

var errNilState = errors.New("tipping engine: state not configured")

// Validation failures.
var (
	ErrUsernameTooLong          = newError(KindValidation, "UsernameTooLong", "username exceeds 32 bytes")
	ErrDisplayNameTooLong       = newError(KindValidation, "DisplayNameTooLong", "display name exceeds 64 bytes")
	ErrDescriptionTooLong       = newError(KindValidation, "DescriptionTooLong", "description exceeds 256 bytes")
	ErrImageURLTooLong          = newError(KindValidation, "ImageUrlTooLong", "image url exceeds 200 bytes")
	ErrMessageTooLong           = newError(KindValidation, "MessageTooLong", "message exceeds 280 bytes")
	ErrGoalTitleTooLong         = newError(KindValidation, "GoalTitleTooLong", "goal title exceeds 64 bytes")
	ErrGoalDescriptionTooLong   = newError(KindValidation, "GoalDescriptionTooLong", "goal description exceeds 256 bytes")
	ErrInvalidUsername          = newError(KindValidation, "InvalidUsername", "username may only contain a-z, 0-9 and _")
	ErrEmptyUsername            = newError(KindValidation, "EmptyUsername", "username required")
	ErrUnsafeTextContent        = newError(KindValidation, "UnsafeTextContent", "text contains forbidden characters")
	ErrTipAmountTooSmall        = newError(KindValidation, "TipAmountTooSmall", "tip amount below minimum")
	ErrTipAmountTooLarge        = newError(KindValidation, "TipAmountTooLarge", "tip amount above maximum")
	ErrWithdrawalTooSmall       = newError(KindValidation, "WithdrawalTooSmall", "withdrawal amount below minimum")
	ErrInvalidWithdrawalFee     = newError(KindValidation, "InvalidWithdrawalFee", "withdrawal fee exceeds maximum")
	ErrInvalidGoalAmount        = newError(KindValidation, "InvalidGoalAmount", "goal target must be positive")
	ErrInvalidMinTipAmount      = newError(KindValidation, "InvalidMinTipAmount", "minimum tip outside allowed range")
	ErrInvalidGoalDeadline      = newError(KindValidation, "InvalidGoalDeadline", "deadline must be in the future")
	ErrGoalDurationTooLong      = newError(KindValidation, "GoalDurationTooLong", "goal duration exceeds one year")
	ErrInvalidContribution      = newError(KindValidation, "InvalidContributionAmount", "contribution below minimum")
	ErrInvalidSubscriptionGap   = newError(KindValidation, "InvalidSubscriptionInterval", "subscription interval below one day")
	ErrInvalidSubscriptionValue = newError(KindValidation, "InvalidSubscriptionAmount", "subscription amount must be positive")
	ErrInvalidSplitBps          = newError(KindValidation, "InvalidSplitBps", "split shares must sum to 10000 bps")
	ErrDuplicateSplitRecipient  = newError(KindValidation, "DuplicateSplitRecipient", "split recipient listed twice")
	ErrInvalidSplitWallet       = newError(KindValidation, "InvalidSplitWallet", "split recipient wallet must be set")
	ErrSplitRecipientMismatch   = newError(KindValidation, "SplitRecipientMismatch", "recipients do not match the configured split")
	ErrInvalidPresetAmount      = newError(KindValidation, "InvalidPresetAmount", "preset amount outside tip bounds")
	ErrSocialLinksTooLong       = newError(KindValidation, "SocialLinksTooLong", "social links exceed 512 bytes")
	ErrWebhookURLTooLong        = newError(KindValidation, "WebhookUrlTooLong", "webhook url exceeds 200 bytes")
	ErrPollTitleTooLong         = newError(KindValidation, "PollTitleTooLong", "poll title exceeds 64 bytes")
	ErrTooFewPollOptions        = newError(KindValidation, "TooFewPollOptions", "poll needs at least two options")
	ErrTooManyPollOptions       = newError(KindValidation, "TooManyPollOptions", "poll allows at most four options")
	ErrPollOptionTooLong        = newError(KindValidation, "PollOptionTooLong", "poll option exceeds 32 bytes")
	ErrInvalidPollDeadline      = newError(KindValidation, "InvalidPollDeadline", "poll deadline must be in the future")
	ErrInvalidPollOption        = newError(KindValidation, "InvalidPollOption", "poll option index out of range")
	ErrContentTitleTooLong      = newError(KindValidation, "ContentTitleTooLong", "content title exceeds 64 bytes")
	ErrContentURLTooLong        = newError(KindValidation, "ContentUrlTooLong", "content url exceeds 200 bytes")
	ErrInvalidRequiredAmount    = newError(KindValidation, "InvalidRequiredAmount", "required amount must be positive")
	ErrInvalidReferralFee       = newError(KindValidation, "InvalidReferralFee", "referral fee share exceeds 2000 bps")
	ErrInvalidAmount            = newError(KindValidation, "InvalidAmount", "amount must be positive")
)

// Authorization failures.
var (
	ErrUnauthorized    = newError(KindAuthorization, "Unauthorized", "caller not permitted")
	ErrNotProfileOwner = newError(KindAuthorization, "NotProfileOwner", "caller does not own the profile")
	ErrNotSubscriber   = newError(KindAuthorization, "NotSubscriber", "caller is not the subscriber")
	ErrNotAdmin        = newError(KindAuthorization, "NotAdmin", "caller is not the platform admin")
	ErrNotReferrer     = newError(KindAuthorization, "NotReferrer", "caller is not the referrer")
)

// State conflicts.
var (
	ErrUsernameTaken          = newError(KindConflict, "UsernameAlreadyTaken", "username already registered")
	ErrGoalAlreadyCompleted   = newError(KindConflict, "GoalAlreadyCompleted", "goal already completed")
	ErrGoalDeadlineExpired    = newError(KindConflict, "GoalDeadlineExpired", "goal deadline passed")
	ErrGoalClosed             = newError(KindConflict, "GoalClosed", "goal closed")
	ErrSubscriptionNotActive  = newError(KindConflict, "SubscriptionNotActive", "subscription not active")
	ErrSubscriptionNotDue     = newError(KindConflict, "SubscriptionNotDue", "subscription payment not due")
	ErrCannotTipSelf          = newError(KindConflict, "CannotTipSelf", "cannot pay your own profile")
	ErrCannotReferSelf        = newError(KindConflict, "CannotReferSelf", "cannot refer yourself")
	ErrVaultNotInitialized    = newError(KindConflict, "VaultNotInitialized", "vault not initialized")
	ErrPlatformPaused         = newError(KindConflict, "PlatformPaused", "platform paused")
	ErrReentrancyDetected     = newError(KindConflict, "ReentrancyDetected", "profile guard already held")
	ErrAnonymousTipsDisabled  = newError(KindConflict, "AnonymousTipsDisabled", "profile requires a message with every tip")
	ErrAccountNotInitialized  = newError(KindConflict, "AccountNotInitialized", "account not initialized")
	ErrAccountAlreadyExists   = newError(KindConflict, "AccountAlreadyInitialized", "account already initialized")
	ErrPollNotActive          = newError(KindConflict, "PollNotActive", "poll not active")
	ErrPollDeadlineExpired    = newError(KindConflict, "PollDeadlineExpired", "poll deadline passed")
	ErrContentGateNotActive   = newError(KindConflict, "ContentGateNotActive", "content gate not active")
	ErrInsufficientTips       = newError(KindConflict, "InsufficientTipsForAccess", "cumulative tips below gate requirement")
	ErrReferralNotActive      = newError(KindConflict, "ReferralNotActive", "referral not active")
	ErrSplitNotFound          = newError(KindNotFound, "SplitNotFound", "no active split configured")
	ErrGoalNotFound           = newError(KindNotFound, "GoalNotFound", "goal not found")
	ErrPollNotFound           = newError(KindNotFound, "PollNotFound", "poll not found")
	ErrContentGateNotFound    = newError(KindNotFound, "ContentGateNotFound", "content gate not found")
	ErrSubscriptionNotFound   = newError(KindNotFound, "SubscriptionNotFound", "subscription not found")
	ErrReferralNotFound       = newError(KindNotFound, "ReferralNotFound", "referral not found")
	ErrRateLimitExceeded      = newError(KindConflict, "RateLimitExceeded", "tip cooldown has not elapsed")
	ErrDailyLimitExceeded     = newError(KindExhausted, "DailyLimitExceeded", "daily tip limit reached")
	ErrInsufficientBalance    = newError(KindConflict, "InsufficientBalance", "insufficient balance")
	ErrInsufficientToken      = newError(KindConflict, "InsufficientTokenBalance", "insufficient token balance")
	ErrVaultBelowRentBuffer   = newError(KindConflict, "VaultBelowRentBuffer", "withdrawal would leave vault below reserve")
	ErrPlatformNotInitialized = newError(KindConflict, "PlatformNotInitialized", "platform not initialized")
)

// Arithmetic failures.
var (
	ErrMathOverflow  = newError(KindArithmetic, "MathOverflow", "arithmetic overflow")
	ErrMathUnderflow = newError(KindArithmetic, "MathUnderflow", "arithmetic underflow")
)

// Resource exhaustion.
var (
	ErrMaxActiveGoals         = newError(KindExhausted, "MaxActiveGoalsReached", "active goal limit reached")
	ErrMaxActivePolls         = newError(KindExhausted, "MaxActivePollsReached", "active poll limit reached")
	ErrMaxActiveGates         = newError(KindExhausted, "MaxActiveGatesReached", "active content gate limit reached")
	ErrTooManySplitRecipients = newError(KindExhausted, "TooManySplitRecipients", "split needs between 2 and 5 recipients")
	ErrTooManyPresetAmounts   = newError(KindExhausted, "TooManyPresetAmounts", "at most five preset amounts")
)

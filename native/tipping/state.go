package tipping

import "tipledger/crypto"

// Record namespaces used for deterministic addressing.
const (
	NamespacePlatform         = "platform_config"
	NamespaceProfile          = "profile"
	NamespaceUsername         = "username"
	NamespaceVault            = "vault"
	NamespaceRateLimit        = "rate_limit"
	NamespaceTipperRecord     = "tipper_record"
	NamespaceSplit            = "tip_split"
	NamespaceSubscription     = "subscription"
	NamespaceGoal             = "goal"
	NamespaceGoalContribution = "goal_contribution"
	NamespacePoll             = "poll"
	NamespaceContentGate      = "content_gate"
	NamespaceReferral         = "referral"
	NamespaceAccount          = "account"
	NamespaceTokenAccount     = "token_account"
	NamespaceTreasury         = "treasury"
)

// TreasuryIdentity is the key-less identity holding platform fees.
var TreasuryIdentity = crypto.DeriveIdentity(NamespaceTreasury)

// PlatformKey addresses the global configuration record.
func PlatformKey() [32]byte { return crypto.DeriveAddress(NamespacePlatform) }

// ProfileKey addresses the profile of owner.
func ProfileKey(owner [20]byte) [32]byte { return crypto.DeriveAddress(NamespaceProfile, owner[:]) }

// UsernameKey addresses the username reservation index.
func UsernameKey(username string) [32]byte {
	return crypto.DeriveAddress(NamespaceUsername, []byte(username))
}

// VaultKey addresses the escrow vault of owner.
func VaultKey(owner [20]byte) [32]byte { return crypto.DeriveAddress(NamespaceVault, owner[:]) }

// RateLimitKey addresses the limiter of payer towards profile.
func RateLimitKey(payer, profile [20]byte) [32]byte {
	return crypto.DeriveAddress(NamespaceRateLimit, payer[:], profile[:])
}

// TipperRecordKey addresses the cumulative record of payer towards profile.
func TipperRecordKey(payer, profile [20]byte) [32]byte {
	return crypto.DeriveAddress(NamespaceTipperRecord, payer[:], profile[:])
}

// SplitKey addresses the split configuration of profile.
func SplitKey(profile [20]byte) [32]byte { return crypto.DeriveAddress(NamespaceSplit, profile[:]) }

// SubscriptionKey addresses the subscription of subscriber to profile.
func SubscriptionKey(subscriber, profile [20]byte) [32]byte {
	return crypto.DeriveAddress(NamespaceSubscription, subscriber[:], profile[:])
}

// GoalKey addresses goal id of profile.
func GoalKey(profile [20]byte, id uint64) [32]byte {
	return crypto.DeriveAddress(NamespaceGoal, profile[:], crypto.Uint64Bytes(id))
}

// GoalContributionKey addresses the marker of contributor on goal id of profile.
func GoalContributionKey(profile [20]byte, id uint64, contributor [20]byte) [32]byte {
	return crypto.DeriveAddress(NamespaceGoalContribution, profile[:], crypto.Uint64Bytes(id), contributor[:])
}

// PollKey addresses poll id of profile.
func PollKey(profile [20]byte, id uint64) [32]byte {
	return crypto.DeriveAddress(NamespacePoll, profile[:], crypto.Uint64Bytes(id))
}

// ContentGateKey addresses gate id of profile.
func ContentGateKey(profile [20]byte, id uint64) [32]byte {
	return crypto.DeriveAddress(NamespaceContentGate, profile[:], crypto.Uint64Bytes(id))
}

// ReferralKey addresses the referral of referrer towards referee.
func ReferralKey(referrer, referee [20]byte) [32]byte {
	return crypto.DeriveAddress(NamespaceReferral, referrer[:], referee[:])
}

// AccountKey addresses the native balance of addr.
func AccountKey(addr [20]byte) [32]byte { return crypto.DeriveAddress(NamespaceAccount, addr[:]) }

// TokenAccountKey addresses the balance of token held by addr.
func TokenAccountKey(addr, token [20]byte) [32]byte {
	return crypto.DeriveAddress(NamespaceTokenAccount, addr[:], token[:])
}

// State is the record view an operation reads and writes. Get methods report
// ok=false for missing records; balances default to zero.
type State interface {
	PlatformGet() (*PlatformConfig, bool, error)
	PlatformPut(cfg *PlatformConfig) error
	ProfileGet(owner [20]byte) (*Profile, bool, error)
	ProfilePut(profile *Profile) error
	UsernameOwner(username string) ([20]byte, bool, error)
	UsernamePut(username string, owner [20]byte) error
	VaultGet(owner [20]byte) (*Vault, bool, error)
	VaultPut(vault *Vault) error
	RateLimitGet(payer, profile [20]byte) (*RateLimit, bool, error)
	RateLimitPut(limit *RateLimit) error
	TipperRecordGet(tipper, profile [20]byte) (*TipperRecord, bool, error)
	TipperRecordPut(record *TipperRecord) error
	SplitGet(profile [20]byte) (*TipSplit, bool, error)
	SplitPut(split *TipSplit) error
	SubscriptionGet(subscriber, profile [20]byte) (*Subscription, bool, error)
	SubscriptionPut(sub *Subscription) error
	GoalGet(profile [20]byte, id uint64) (*Goal, bool, error)
	GoalPut(goal *Goal) error
	GoalContributed(profile [20]byte, id uint64, contributor [20]byte) (bool, error)
	GoalContributionPut(profile [20]byte, id uint64, contributor [20]byte) error
	PollGet(profile [20]byte, id uint64) (*Poll, bool, error)
	PollPut(poll *Poll) error
	ContentGateGet(profile [20]byte, id uint64) (*ContentGate, bool, error)
	ContentGatePut(gate *ContentGate) error
	ReferralGet(referrer, referee [20]byte) (*Referral, bool, error)
	ReferralPut(referral *Referral) error
	Balance(addr [20]byte) (uint64, error)
	SetBalance(addr [20]byte, amount uint64) error
	TokenBalance(addr, token [20]byte) (uint64, error)
	SetTokenBalance(addr, token [20]byte, amount uint64) error
}

// Txn is a State whose writes become visible only on Commit.
type Txn interface {
	State
	Commit() error
	Discard()
}

// Store opens transactions over the persisted ledger.
type Store interface {
	Begin() Txn
}

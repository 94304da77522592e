package state

import (
	"sync"

	"tipledger/native/tipping"
	"tipledger/storage"
)

// TippingStore persists ledger records in a key-value database. Every
// operation runs in its own Journal so failed operations leave no writes.
type TippingStore struct {
	db     storage.Database
	commit sync.Mutex
}

// NewTippingStore wraps db as a ledger store.
func NewTippingStore(db storage.Database) *TippingStore {
	return &TippingStore{db: db}
}

// Begin opens a journal over the store.
func (s *TippingStore) Begin() tipping.Txn {
	return &tippingTxn{Journal: newJournal(s.db, &s.commit)}
}

// Database exposes the underlying key-value database.
func (s *TippingStore) Database() storage.Database { return s.db }

type tippingTxn struct {
	*Journal
}

func (t *tippingTxn) PlatformGet() (*tipping.PlatformConfig, bool, error) {
	cfg := new(tipping.PlatformConfig)
	ok, err := t.get(tipping.PlatformKey(), cfg)
	return orNil(cfg, ok, err)
}

func (t *tippingTxn) PlatformPut(cfg *tipping.PlatformConfig) error {
	return t.put(tipping.PlatformKey(), cfg)
}

func (t *tippingTxn) ProfileGet(owner [20]byte) (*tipping.Profile, bool, error) {
	profile := new(tipping.Profile)
	ok, err := t.get(tipping.ProfileKey(owner), profile)
	return orNil(profile, ok, err)
}

func (t *tippingTxn) ProfilePut(profile *tipping.Profile) error {
	return t.put(tipping.ProfileKey(profile.Owner), profile)
}

func (t *tippingTxn) UsernameOwner(username string) ([20]byte, bool, error) {
	var owner [20]byte
	ok, err := t.get(tipping.UsernameKey(username), &owner)
	return owner, ok, err
}

func (t *tippingTxn) UsernamePut(username string, owner [20]byte) error {
	return t.put(tipping.UsernameKey(username), owner)
}

func (t *tippingTxn) VaultGet(owner [20]byte) (*tipping.Vault, bool, error) {
	vault := new(tipping.Vault)
	ok, err := t.get(tipping.VaultKey(owner), vault)
	return orNil(vault, ok, err)
}

func (t *tippingTxn) VaultPut(vault *tipping.Vault) error {
	return t.put(tipping.VaultKey(vault.Owner), vault)
}

func (t *tippingTxn) RateLimitGet(payer, profile [20]byte) (*tipping.RateLimit, bool, error) {
	limit := new(tipping.RateLimit)
	ok, err := t.get(tipping.RateLimitKey(payer, profile), limit)
	return orNil(limit, ok, err)
}

func (t *tippingTxn) RateLimitPut(limit *tipping.RateLimit) error {
	return t.put(tipping.RateLimitKey(limit.Payer, limit.Profile), limit)
}

func (t *tippingTxn) TipperRecordGet(tipper, profile [20]byte) (*tipping.TipperRecord, bool, error) {
	record := new(tipping.TipperRecord)
	ok, err := t.get(tipping.TipperRecordKey(tipper, profile), record)
	return orNil(record, ok, err)
}

func (t *tippingTxn) TipperRecordPut(record *tipping.TipperRecord) error {
	return t.put(tipping.TipperRecordKey(record.Tipper, record.Profile), record)
}

func (t *tippingTxn) SplitGet(profile [20]byte) (*tipping.TipSplit, bool, error) {
	split := new(tipping.TipSplit)
	ok, err := t.get(tipping.SplitKey(profile), split)
	return orNil(split, ok, err)
}

func (t *tippingTxn) SplitPut(split *tipping.TipSplit) error {
	return t.put(tipping.SplitKey(split.Profile), split)
}

func (t *tippingTxn) SubscriptionGet(subscriber, profile [20]byte) (*tipping.Subscription, bool, error) {
	sub := new(tipping.Subscription)
	ok, err := t.get(tipping.SubscriptionKey(subscriber, profile), sub)
	return orNil(sub, ok, err)
}

func (t *tippingTxn) SubscriptionPut(sub *tipping.Subscription) error {
	return t.put(tipping.SubscriptionKey(sub.Subscriber, sub.Profile), sub)
}

func (t *tippingTxn) GoalGet(profile [20]byte, id uint64) (*tipping.Goal, bool, error) {
	goal := new(tipping.Goal)
	ok, err := t.get(tipping.GoalKey(profile, id), goal)
	return orNil(goal, ok, err)
}

func (t *tippingTxn) GoalPut(goal *tipping.Goal) error {
	return t.put(tipping.GoalKey(goal.Profile, goal.ID), goal)
}

func (t *tippingTxn) GoalContributed(profile [20]byte, id uint64, contributor [20]byte) (bool, error) {
	_, ok, err := t.raw(tipping.GoalContributionKey(profile, id, contributor))
	return ok, err
}

func (t *tippingTxn) GoalContributionPut(profile [20]byte, id uint64, contributor [20]byte) error {
	return t.put(tipping.GoalContributionKey(profile, id, contributor), true)
}

func (t *tippingTxn) PollGet(profile [20]byte, id uint64) (*tipping.Poll, bool, error) {
	poll := new(tipping.Poll)
	ok, err := t.get(tipping.PollKey(profile, id), poll)
	return orNil(poll, ok, err)
}

func (t *tippingTxn) PollPut(poll *tipping.Poll) error {
	return t.put(tipping.PollKey(poll.Profile, poll.ID), poll)
}

func (t *tippingTxn) ContentGateGet(profile [20]byte, id uint64) (*tipping.ContentGate, bool, error) {
	gate := new(tipping.ContentGate)
	ok, err := t.get(tipping.ContentGateKey(profile, id), gate)
	return orNil(gate, ok, err)
}

func (t *tippingTxn) ContentGatePut(gate *tipping.ContentGate) error {
	return t.put(tipping.ContentGateKey(gate.Profile, gate.ID), gate)
}

func (t *tippingTxn) ReferralGet(referrer, referee [20]byte) (*tipping.Referral, bool, error) {
	referral := new(tipping.Referral)
	ok, err := t.get(tipping.ReferralKey(referrer, referee), referral)
	return orNil(referral, ok, err)
}

func (t *tippingTxn) ReferralPut(referral *tipping.Referral) error {
	return t.put(tipping.ReferralKey(referral.Referrer, referral.Referee), referral)
}

func (t *tippingTxn) Balance(addr [20]byte) (uint64, error) {
	var amount uint64
	_, err := t.get(tipping.AccountKey(addr), &amount)
	return amount, err
}

func (t *tippingTxn) SetBalance(addr [20]byte, amount uint64) error {
	return t.put(tipping.AccountKey(addr), amount)
}

func (t *tippingTxn) TokenBalance(addr, token [20]byte) (uint64, error) {
	var amount uint64
	_, err := t.get(tipping.TokenAccountKey(addr, token), &amount)
	return amount, err
}

func (t *tippingTxn) SetTokenBalance(addr, token [20]byte, amount uint64) error {
	return t.put(tipping.TokenAccountKey(addr, token), amount)
}

func orNil[T any](record *T, ok bool, err error) (*T, bool, error) {
	if err != nil || !ok {
		return nil, false, err
	}
	return record, true, nil
}

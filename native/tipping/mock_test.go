package tipping

import (
	"context"
	"sync"
	"testing"

	"tipledger/core/events"
)

// mockStore is an in-memory Store. Transactions stage writes in an overlay
// that is folded into the base map on Commit.
type mockStore struct {
	mu      sync.Mutex
	data    map[string]any
	commits int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]any)}
}

func (m *mockStore) Begin() Txn {
	return &mockTxn{store: m, writes: make(map[string]any)}
}

func (m *mockStore) snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = cloneRecord(v)
	}
	return out
}

func cloneRecord(v any) any {
	switch rec := v.(type) {
	case *Profile:
		return rec.Clone()
	case *TipSplit:
		return rec.Clone()
	case *Poll:
		return rec.Clone()
	case *PlatformConfig:
		c := *rec
		return &c
	case *Vault:
		c := *rec
		return &c
	case *RateLimit:
		c := *rec
		return &c
	case *TipperRecord:
		c := *rec
		return &c
	case *Subscription:
		c := *rec
		return &c
	case *Goal:
		c := *rec
		return &c
	case *ContentGate:
		c := *rec
		return &c
	case *Referral:
		c := *rec
		return &c
	default:
		return v
	}
}

type mockTxn struct {
	store  *mockStore
	writes map[string]any
}

func keyString(k [32]byte) string { return string(k[:]) }

func (t *mockTxn) get(k [32]byte) (any, bool) {
	key := keyString(k)
	if v, ok := t.writes[key]; ok {
		return cloneRecord(v), true
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	v, ok := t.store.data[key]
	if !ok {
		return nil, false
	}
	return cloneRecord(v), true
}

func (t *mockTxn) put(k [32]byte, v any) error {
	t.writes[keyString(k)] = cloneRecord(v)
	return nil
}

func (t *mockTxn) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for k, v := range t.writes {
		t.store.data[k] = v
	}
	t.writes = make(map[string]any)
	t.store.commits++
	return nil
}

func (t *mockTxn) Discard() { t.writes = make(map[string]any) }

func getAs[T any](t *mockTxn, k [32]byte) (T, bool, error) {
	var zero T
	v, ok := t.get(k)
	if !ok {
		return zero, false, nil
	}
	rec, _ := v.(T)
	return rec, true, nil
}

func (t *mockTxn) PlatformGet() (*PlatformConfig, bool, error) {
	return getAs[*PlatformConfig](t, PlatformKey())
}
func (t *mockTxn) PlatformPut(cfg *PlatformConfig) error { return t.put(PlatformKey(), cfg) }

func (t *mockTxn) ProfileGet(owner [20]byte) (*Profile, bool, error) {
	return getAs[*Profile](t, ProfileKey(owner))
}
func (t *mockTxn) ProfilePut(p *Profile) error { return t.put(ProfileKey(p.Owner), p) }

func (t *mockTxn) UsernameOwner(username string) ([20]byte, bool, error) {
	return getAs[[20]byte](t, UsernameKey(username))
}
func (t *mockTxn) UsernamePut(username string, owner [20]byte) error {
	return t.put(UsernameKey(username), owner)
}

func (t *mockTxn) VaultGet(owner [20]byte) (*Vault, bool, error) {
	return getAs[*Vault](t, VaultKey(owner))
}
func (t *mockTxn) VaultPut(v *Vault) error { return t.put(VaultKey(v.Owner), v) }

func (t *mockTxn) RateLimitGet(payer, profile [20]byte) (*RateLimit, bool, error) {
	return getAs[*RateLimit](t, RateLimitKey(payer, profile))
}
func (t *mockTxn) RateLimitPut(l *RateLimit) error {
	return t.put(RateLimitKey(l.Payer, l.Profile), l)
}

func (t *mockTxn) TipperRecordGet(tipper, profile [20]byte) (*TipperRecord, bool, error) {
	return getAs[*TipperRecord](t, TipperRecordKey(tipper, profile))
}
func (t *mockTxn) TipperRecordPut(r *TipperRecord) error {
	return t.put(TipperRecordKey(r.Tipper, r.Profile), r)
}

func (t *mockTxn) SplitGet(profile [20]byte) (*TipSplit, bool, error) {
	return getAs[*TipSplit](t, SplitKey(profile))
}
func (t *mockTxn) SplitPut(s *TipSplit) error { return t.put(SplitKey(s.Profile), s) }

func (t *mockTxn) SubscriptionGet(subscriber, profile [20]byte) (*Subscription, bool, error) {
	return getAs[*Subscription](t, SubscriptionKey(subscriber, profile))
}
func (t *mockTxn) SubscriptionPut(s *Subscription) error {
	return t.put(SubscriptionKey(s.Subscriber, s.Profile), s)
}

func (t *mockTxn) GoalGet(profile [20]byte, id uint64) (*Goal, bool, error) {
	return getAs[*Goal](t, GoalKey(profile, id))
}
func (t *mockTxn) GoalPut(g *Goal) error { return t.put(GoalKey(g.Profile, g.ID), g) }

func (t *mockTxn) GoalContributed(profile [20]byte, id uint64, contributor [20]byte) (bool, error) {
	_, ok := t.get(GoalContributionKey(profile, id, contributor))
	return ok, nil
}
func (t *mockTxn) GoalContributionPut(profile [20]byte, id uint64, contributor [20]byte) error {
	return t.put(GoalContributionKey(profile, id, contributor), true)
}

func (t *mockTxn) PollGet(profile [20]byte, id uint64) (*Poll, bool, error) {
	return getAs[*Poll](t, PollKey(profile, id))
}
func (t *mockTxn) PollPut(p *Poll) error { return t.put(PollKey(p.Profile, p.ID), p) }

func (t *mockTxn) ContentGateGet(profile [20]byte, id uint64) (*ContentGate, bool, error) {
	return getAs[*ContentGate](t, ContentGateKey(profile, id))
}
func (t *mockTxn) ContentGatePut(g *ContentGate) error {
	return t.put(ContentGateKey(g.Profile, g.ID), g)
}

func (t *mockTxn) ReferralGet(referrer, referee [20]byte) (*Referral, bool, error) {
	return getAs[*Referral](t, ReferralKey(referrer, referee))
}
func (t *mockTxn) ReferralPut(r *Referral) error {
	return t.put(ReferralKey(r.Referrer, r.Referee), r)
}

func (t *mockTxn) Balance(a [20]byte) (uint64, error) {
	v, _, err := getAs[uint64](t, AccountKey(a))
	return v, err
}
func (t *mockTxn) SetBalance(a [20]byte, amount uint64) error {
	return t.put(AccountKey(a), amount)
}

func (t *mockTxn) TokenBalance(a, token [20]byte) (uint64, error) {
	v, _, err := getAs[uint64](t, TokenAccountKey(a, token))
	return v, err
}
func (t *mockTxn) SetTokenBalance(a, token [20]byte, amount uint64) error {
	return t.put(TokenAccountKey(a, token), amount)
}

var testCtx = context.Background()

func ident(last byte) [20]byte {
	var out [20]byte
	out[0] = 0xAA
	out[19] = last
	return out
}

var (
	adminID   = ident(0x01)
	creatorID = ident(0x02)
	tipperID  = ident(0x03)
	otherID   = ident(0x04)
	tokenID   = ident(0x70)
)

// fixture is an engine over a mock store with a settable clock and a
// recorder of committed events.
type fixture struct {
	t      *testing.T
	store  *mockStore
	engine *Engine
	now    int64
	mu     sync.Mutex
	events []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, store: newMockStore(), now: 1_700_000_000}
	f.engine = NewEngine(f.store)
	f.engine.SetNowFunc(func() int64 { return f.now })
	f.engine.SetEmitter(events.Func(func(evt events.Event) {
		f.mu.Lock()
		f.events = append(f.events, evt.EventType())
		f.mu.Unlock()
	}))
	return f
}

func (f *fixture) advance(seconds int64) { f.now += seconds }

func (f *fixture) fund(id [20]byte, amount uint64) {
	f.t.Helper()
	if _, err := f.engine.CreditAccount(testCtx, id, amount); err != nil {
		f.t.Fatalf("credit %x: %v", id, err)
	}
}

func (f *fixture) balance(id [20]byte) uint64 {
	f.t.Helper()
	bal, err := f.engine.Balance(id)
	if err != nil {
		f.t.Fatalf("balance: %v", err)
	}
	return bal
}

// creator boots the platform and a creator with a funded vault.
func (f *fixture) creator() *fixture {
	f.t.Helper()
	f.fund(adminID, 10*MinReserve)
	if _, err := f.engine.InitializePlatform(testCtx, adminID); err != nil {
		f.t.Fatalf("initialize platform: %v", err)
	}
	f.fund(creatorID, MinReserve)
	if _, err := f.engine.CreateProfile(testCtx, creatorID, ProfileParams{Username: "alice", DisplayName: "Alice"}); err != nil {
		f.t.Fatalf("create profile: %v", err)
	}
	if _, err := f.engine.InitializeVault(testCtx, creatorID); err != nil {
		f.t.Fatalf("initialize vault: %v", err)
	}
	f.events = nil
	return f
}

func (f *fixture) eventCount(typ string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, evt := range f.events {
		if evt == typ {
			n++
		}
	}
	return n
}

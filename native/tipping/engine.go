package tipping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tipledger/core/events"
	"tipledger/core/types"
	"tipledger/crypto"
	"tipledger/native/common"
	"tipledger/observability"
)

const tracerName = "tipledger/native/tipping"

// errLockSetChanged signals that an operation locked a stale identity set and
// must be retried with a fresh one.
var errLockSetChanged = errors.New("tipping engine: lock set changed")

// Engine wires ledger business logic with persistence and event emission.
type Engine struct {
	store   Store
	emitter events.Emitter
	logger  *slog.Logger
	tracer  trace.Tracer
	nowFn   func() int64
	limits  Limits
	locks   *lockTable
}

// NewEngine constructs a ledger engine over store with default dependencies.
func NewEngine(store Store) *Engine {
	return &Engine{
		store:   store,
		emitter: events.NoopEmitter{},
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
		nowFn: func() int64 {
			return time.Now().Unix()
		},
		limits: DefaultLimits(),
		locks:  newLockTable(),
	}
}

// SetStore configures the state backend used by the engine.
func (e *Engine) SetStore(store Store) { e.store = store }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetLogger configures the structured logger.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger.With(slog.String("component", "tipping"))
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetLimits overrides the cooldown and daily cap.
func (e *Engine) SetLimits(limits Limits) { e.limits = limits.normalize() }

// Limits returns the active admission limits.
func (e *Engine) Limits() Limits { return e.limits }

func (e *Engine) timestamp() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	now := e.nowFn()
	if now < 0 {
		return 0
	}
	return uint64(now)
}

// opScope is what an operation body works against: a private journal, a
// staged event buffer and the operation timestamp.
type opScope struct {
	tx  Txn
	buf *events.Buffer
	now uint64
}

func (s *opScope) emit(evt *types.Event) {
	if evt == nil {
		return
	}
	s.buf.Emit(WrapEvent(evt))
}

// execute runs fn with exclusive access to ids. Writes and events are released
// only when fn succeeds and the journal commits.
func (e *Engine) execute(ctx context.Context, op string, ids [][20]byte, fn func(*opScope) error) error {
	if e == nil || e.store == nil {
		return errNilState
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := e.tracer.Start(ctx, "tipping."+op, trace.WithAttributes(
		attribute.String("ledger.operation", op),
		attribute.Int("ledger.accounts", len(ids)),
	))
	defer span.End()
	started := time.Now()

	unlock := e.locks.acquire(ids...)
	defer unlock()

	scope := &opScope{buf: events.NewBuffer()}
	err := ctx.Err()
	if err == nil {
		scope.tx = e.store.Begin()
		scope.now = e.timestamp()
		err = fn(scope)
		if err == nil {
			if commitErr := scope.tx.Commit(); commitErr != nil {
				err = fmt.Errorf("tipping: commit %s: %w", op, commitErr)
			}
		}
		if err != nil {
			scope.tx.Discard()
			scope.buf.Reset()
		}
	}
	if errors.Is(err, errLockSetChanged) {
		return err
	}
	e.observe(ctx, op, err, time.Since(started), span)
	if err != nil {
		return err
	}
	scope.buf.Flush(e.emitter)
	return nil
}

// executeRetrying re-runs execute once when the operation discovers its lock
// set was computed from state that has since changed.
func (e *Engine) executeRetrying(ctx context.Context, op string, idsFn func() ([][20]byte, error), fn func(*opScope) error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		var ids [][20]byte
		if ids, err = idsFn(); err != nil {
			return err
		}
		err = e.execute(ctx, op, ids, fn)
		if !errors.Is(err, errLockSetChanged) {
			return err
		}
	}
	return err
}

func (e *Engine) observe(ctx context.Context, op string, err error, elapsed time.Duration, span trace.Span) {
	metrics := observability.Ledger()
	code := CodeOf(err)
	metrics.Observe(op, code, elapsed)
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}
	if err == nil {
		span.SetStatus(codes.Ok, "")
		logger.DebugContext(ctx, "ledger operation committed",
			slog.String("operation", op),
			slog.Duration("elapsed", elapsed))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, code)
	if errors.Is(err, ErrRateLimitExceeded) || errors.Is(err, ErrDailyLimitExceeded) {
		metrics.RecordThrottle(code)
	}
	if KindOf(err) == KindInternal {
		logger.ErrorContext(ctx, "ledger operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return
	}
	logger.InfoContext(ctx, "ledger operation rejected",
		slog.String("operation", op),
		slog.String("code", code),
		slog.String("kind", KindOf(err).String()))
}

// view runs a read-only function against a throwaway journal.
func (e *Engine) view(fn func(State) error) error {
	if e == nil || e.store == nil {
		return errNilState
	}
	tx := e.store.Begin()
	defer tx.Discard()
	return fn(tx)
}

func loadPlatform(st State) (*PlatformConfig, error) {
	cfg, ok, err := st.PlatformGet()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, ErrPlatformNotInitialized
	}
	return cfg, nil
}

// activePlatform loads the platform record and rejects paused platforms.
func activePlatform(st State) (*PlatformConfig, error) {
	cfg, err := loadPlatform(st)
	if err != nil {
		return nil, err
	}
	if err := common.Guard(cfg, ModuleName); err != nil {
		return nil, ErrPlatformPaused
	}
	return cfg, nil
}

func loadProfile(st State, owner [20]byte) (*Profile, error) {
	profile, ok, err := st.ProfileGet(owner)
	if err != nil {
		return nil, err
	}
	if !ok || profile == nil {
		return nil, ErrAccountNotInitialized
	}
	return profile, nil
}

func loadVault(st State, owner [20]byte) (*Vault, error) {
	vault, ok, err := st.VaultGet(owner)
	if err != nil {
		return nil, err
	}
	if !ok || vault == nil {
		return nil, ErrVaultNotInitialized
	}
	return vault, nil
}

func requireAdmin(cfg *PlatformConfig, caller [20]byte) error {
	if cfg.Admin != caller {
		return ErrNotAdmin
	}
	return nil
}

func debit(st State, from [20]byte, amount uint64) error {
	balance, err := st.Balance(from)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	return st.SetBalance(from, balance-amount)
}

func credit(st State, to [20]byte, amount uint64) error {
	balance, err := st.Balance(to)
	if err != nil {
		return err
	}
	next, err := addUint64(balance, amount)
	if err != nil {
		return err
	}
	return st.SetBalance(to, next)
}

func transfer(st State, from, to [20]byte, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := debit(st, from, amount); err != nil {
		return err
	}
	return credit(st, to, amount)
}

func transferToken(st State, token, from, to [20]byte, amount uint64) error {
	if amount == 0 {
		return nil
	}
	fromBalance, err := st.TokenBalance(from, token)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientToken
	}
	if err := st.SetTokenBalance(from, token, fromBalance-amount); err != nil {
		return err
	}
	toBalance, err := st.TokenBalance(to, token)
	if err != nil {
		return err
	}
	next, err := addUint64(toBalance, amount)
	if err != nil {
		return err
	}
	return st.SetTokenBalance(to, token, next)
}

// guarded holds the profile's reentrancy guard for the duration of fn. The
// guard is released on every exit path and the final profile is persisted.
func guarded(st State, profile *Profile, fn func() error) (err error) {
	if err := profile.AcquireGuard(); err != nil {
		return err
	}
	if err := st.ProfilePut(profile); err != nil {
		profile.ReleaseGuard()
		return err
	}
	defer func() {
		profile.ReleaseGuard()
		if putErr := st.ProfilePut(profile); putErr != nil && err == nil {
			err = putErr
		}
	}()
	return fn()
}

// admitRate applies the per-(payer, profile) limiter. created reports whether
// this was the pair's first action.
func (e *Engine) admitRate(st State, payer, profile [20]byte, now uint64) (created bool, err error) {
	limit, ok, err := st.RateLimitGet(payer, profile)
	if err != nil {
		return false, err
	}
	if !ok || limit == nil || limit.LastActionAt == 0 {
		return true, st.RateLimitPut(newRateLimit(payer, profile, now))
	}
	if err := limit.CheckAndRecord(now, e.limits); err != nil {
		return false, err
	}
	return false, st.RateLimitPut(limit)
}

// recordTipper folds amount into the payer's record. isNew reports whether the
// record was created by this call.
func recordTipper(st State, tipper, profile [20]byte, amount, now uint64) (*TipperRecord, bool, error) {
	record, ok, err := st.TipperRecordGet(tipper, profile)
	if err != nil {
		return nil, false, err
	}
	isNew := !ok || record == nil || record.TipCount == 0
	if !ok || record == nil {
		record = newTipperRecord(tipper, profile, now)
	}
	if err := record.RecordTip(amount, now); err != nil {
		return nil, false, err
	}
	if err := st.TipperRecordPut(record); err != nil {
		return nil, false, err
	}
	return record, isNew, nil
}

func (e *Engine) logAttr(key string, id [20]byte) slog.Attr {
	return slog.String(key, crypto.FormatIdentity(id))
}

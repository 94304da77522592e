package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tipledger/crypto"
	"tipledger/gateway/middleware"
	"tipledger/native/tipping"
)

// server exposes read-only views of the ledger for operators.
type server struct {
	engine  *tipping.Engine
	logger  *slog.Logger
	limiter *middleware.RateLimiter
	obs     *middleware.Observability
	metrics http.Handler
}

func newServer(engine *tipping.Engine, limit middleware.RateLimit, reg prometheus.Registerer, gatherer prometheus.Gatherer, logger *slog.Logger) *server {
	if logger == nil {
		logger = slog.Default()
	}
	return &server{
		engine:  engine,
		logger:  logger,
		limiter: middleware.NewRateLimiter(limit, logger),
		obs:     middleware.NewObservability(middleware.ObservabilityConfig{ServiceName: "tipledgerd"}, reg, logger),
		metrics: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics)
	r.Route("/v1", func(r chi.Router) {
		r.With(s.wrap("profiles")).Get("/profiles/{owner}", s.handleProfile)
		r.With(s.wrap("vaults")).Get("/vaults/{owner}", s.handleVault)
		r.With(s.wrap("tippers")).Get("/profiles/{owner}/tippers/{tipper}", s.handleTipper)
		r.With(s.wrap("balances")).Get("/balances/{owner}", s.handleBalance)
		r.With(s.wrap("platform")).Get("/platform", s.handlePlatform)
	})
	return r
}

func (s *server) wrap(route string) func(http.Handler) http.Handler {
	limit := s.limiter.Middleware(route)
	observe := s.obs.Middleware(route)
	return func(next http.Handler) http.Handler {
		return observe(limit(next))
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type profileView struct {
	Owner            string            `json:"owner"`
	Username         string            `json:"username"`
	DisplayName      string            `json:"displayName"`
	Description      string            `json:"description,omitempty"`
	ImageURL         string            `json:"imageUrl,omitempty"`
	TipCount         uint64            `json:"tipCount"`
	TotalReceived    uint64            `json:"totalReceived"`
	TotalTokens      uint64            `json:"totalReceivedToken"`
	UniqueTippers    uint64            `json:"uniqueTippers"`
	MinTipAmount     uint64            `json:"minTipAmount"`
	WithdrawalFeeBps uint16            `json:"withdrawalFeeBps"`
	AcceptAnonymous  bool              `json:"acceptAnonymous"`
	Verified         bool              `json:"verified"`
	ActiveGoals      uint8             `json:"activeGoals"`
	ActivePolls      uint8             `json:"activePolls"`
	ActiveGates      uint8             `json:"activeGates"`
	Leaderboard      []leaderboardView `json:"leaderboard"`
	PresetAmounts    []uint64          `json:"presetAmounts,omitempty"`
	CreatedAt        uint64            `json:"createdAt"`
}

type leaderboardView struct {
	Tipper string `json:"tipper"`
	Amount uint64 `json:"amount"`
	Count  uint64 `json:"count"`
}

func newProfileView(p *tipping.Profile) profileView {
	view := profileView{
		Owner:            crypto.FormatIdentity(p.Owner),
		Username:         p.Username,
		DisplayName:      p.DisplayName,
		Description:      p.Description,
		ImageURL:         p.ImageURL,
		TipCount:         p.TipCount,
		TotalReceived:    p.TotalReceived,
		TotalTokens:      p.TotalReceivedToken,
		UniqueTippers:    p.UniqueTippers,
		MinTipAmount:     p.MinTipAmount,
		WithdrawalFeeBps: p.WithdrawalFeeBps,
		AcceptAnonymous:  p.AcceptAnonymous,
		Verified:         p.Verified,
		ActiveGoals:      p.ActiveGoals,
		ActivePolls:      p.ActivePolls,
		ActiveGates:      p.ActiveGates,
		Leaderboard:      make([]leaderboardView, 0, len(p.Leaderboard)),
		PresetAmounts:    p.PresetAmounts,
		CreatedAt:        p.CreatedAt,
	}
	for _, entry := range p.Leaderboard {
		view.Leaderboard = append(view.Leaderboard, leaderboardView{
			Tipper: crypto.FormatIdentity(entry.Tipper),
			Amount: entry.Amount,
			Count:  entry.Count,
		})
	}
	return view
}

// handleProfile accepts either a bech32 identity or a username.
func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "owner")
	var (
		profile *tipping.Profile
		err     error
	)
	if owner, parseErr := crypto.ParseIdentity(ref); parseErr == nil {
		profile, err = s.engine.Profile(owner)
	} else {
		profile, err = s.engine.ProfileByUsername(ref)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(profile))
}

func (s *server) handleVault(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.identityParam(w, r, "owner")
	if !ok {
		return
	}
	vault, err := s.engine.Vault(owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"owner":          crypto.FormatIdentity(vault.Owner),
		"balance":        vault.Balance,
		"withdrawable":   vault.Withdrawable(),
		"totalDeposited": vault.TotalDeposited,
		"totalWithdrawn": vault.TotalWithdrawn,
		"createdAt":      vault.CreatedAt,
	})
}

func (s *server) handleTipper(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.identityParam(w, r, "owner")
	if !ok {
		return
	}
	tipper, ok := s.identityParam(w, r, "tipper")
	if !ok {
		return
	}
	record, found, err := s.engine.TipperRecord(tipper, owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "TipperRecordNotFound", Message: "no tips recorded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tipper":        crypto.FormatIdentity(record.Tipper),
		"profile":       crypto.FormatIdentity(record.Profile),
		"totalAmount":   record.TotalAmount,
		"tipCount":      record.TipCount,
		"weeklyAmount":  record.WeeklyAmount,
		"monthlyAmount": record.MonthlyAmount,
		"badge":         record.Badge.String(),
		"firstTipAt":    record.FirstTipAt,
		"lastTipAt":     record.LastTipAt,
	})
}

func (s *server) handleBalance(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.identityParam(w, r, "owner")
	if !ok {
		return
	}
	balance, err := s.engine.Balance(owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"owner":   crypto.FormatIdentity(owner),
		"balance": balance,
	})
}

func (s *server) handlePlatform(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.Platform()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"admin":         crypto.FormatIdentity(cfg.Admin),
		"treasury":      crypto.FormatIdentity(cfg.Treasury),
		"feeBps":        cfg.FeeBps,
		"paused":        cfg.Paused,
		"retainedFees":  cfg.RetainedFees,
		"initializedAt": cfg.InitializedAt,
	})
}

func (s *server) identityParam(w http.ResponseWriter, r *http.Request, name string) ([20]byte, bool) {
	id, err := crypto.ParseIdentity(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "InvalidIdentity", Message: err.Error()})
		return [20]byte{}, false
	}
	return id, true
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case tipping.KindOf(err) == tipping.KindNotFound, errors.Is(err, tipping.ErrAccountNotInitialized):
		status = http.StatusNotFound
	case tipping.KindOf(err) == tipping.KindValidation:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("ops query failed", slog.Any("error", err))
		writeJSON(w, status, errorBody{Code: "Internal", Message: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Code: tipping.CodeOf(err), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"tipledger/config"
	"tipledger/crypto"
	"tipledger/gateway/middleware"
	"tipledger/native/tipping"
	"tipledger/observability/logging"
	"tipledger/storage"
)

var (
	testAdmin   = [20]byte{0xA1}
	testCreator = [20]byte{0xC1}
	testTipper  = [20]byte{0x71}
)

func newTestServer(t *testing.T) (*server, http.Handler) {
	t.Helper()
	cfg := config.Default()
	cfg.Ledger.TipCooldownSeconds = 0
	engine := newEngine(storage.NewMemDB(), cfg, logging.SetupWithOptions("tipledgerd-test", "", logging.Options{Level: "error"}))

	ctx := context.Background()
	_, err := engine.CreditAccount(ctx, testAdmin, 10*tipping.MinReserve)
	require.NoError(t, err)
	_, err = engine.InitializePlatform(ctx, testAdmin)
	require.NoError(t, err)
	_, err = engine.CreditAccount(ctx, testCreator, tipping.MinReserve)
	require.NoError(t, err)
	_, err = engine.CreateProfile(ctx, testCreator, tipping.ProfileParams{Username: "alice", DisplayName: "Alice"})
	require.NoError(t, err)
	_, err = engine.InitializeVault(ctx, testCreator)
	require.NoError(t, err)
	_, err = engine.CreditAccount(ctx, testTipper, 50_000_000)
	require.NoError(t, err)
	_, err = engine.SendTip(ctx, tipping.TipRequest{Tipper: testTipper, Recipient: testCreator, Amount: 2_000_000, Message: "gm"})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	srv := newServer(engine, middleware.RateLimit{RequestsPerSecond: 100, Burst: 100}, reg, reg, nil)
	return srv, srv.routes()
}

func get(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return res, body
}

func TestServerHealth(t *testing.T) {
	_, handler := newTestServer(t)
	res, body := get(t, handler, "/healthz")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "ok", body["status"])
}

func TestServerProfileByIdentityAndUsername(t *testing.T) {
	_, handler := newTestServer(t)
	owner := crypto.FormatIdentity(testCreator)

	res, body := get(t, handler, "/v1/profiles/"+owner)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "alice", body["username"])
	require.EqualValues(t, 1, body["tipCount"])

	res, body = get(t, handler, "/v1/profiles/alice")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, owner, body["owner"])
	board := body["leaderboard"].([]any)
	require.Len(t, board, 1)
	require.Equal(t, crypto.FormatIdentity(testTipper), board[0].(map[string]any)["tipper"])
}

func TestServerUnknownProfile(t *testing.T) {
	_, handler := newTestServer(t)
	res, body := get(t, handler, "/v1/profiles/"+crypto.FormatIdentity(testTipper))
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "AccountNotInitialized", body["code"])
}

func TestServerVaultAndTipper(t *testing.T) {
	_, handler := newTestServer(t)
	owner := crypto.FormatIdentity(testCreator)

	res, body := get(t, handler, "/v1/vaults/"+owner)
	require.Equal(t, http.StatusOK, res.Code)
	require.EqualValues(t, tipping.MinReserve+2_000_000, body["balance"])

	res, body = get(t, handler, "/v1/profiles/"+owner+"/tippers/"+crypto.FormatIdentity(testTipper))
	require.Equal(t, http.StatusOK, res.Code)
	require.EqualValues(t, 2_000_000, body["totalAmount"])

	res, body = get(t, handler, "/v1/profiles/"+owner+"/tippers/"+crypto.FormatIdentity(testAdmin))
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "TipperRecordNotFound", body["code"])
}

func TestServerRejectsMalformedIdentity(t *testing.T) {
	_, handler := newTestServer(t)
	res, body := get(t, handler, "/v1/vaults/not-an-address")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "InvalidIdentity", body["code"])
}

func TestServerPlatform(t *testing.T) {
	_, handler := newTestServer(t)
	res, body := get(t, handler, "/v1/platform")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, crypto.FormatIdentity(testAdmin), body["admin"])
	require.EqualValues(t, tipping.DefaultPlatformFeeBps, body["feeBps"])
}

func TestServerRateLimitsClients(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.limiter = middleware.NewRateLimiter(middleware.RateLimit{RequestsPerSecond: 1, Burst: 1}, nil)
	handler := srv.routes()

	res, _ := get(t, handler, "/v1/platform")
	require.Equal(t, http.StatusOK, res.Code)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/platform", nil))
	require.Equal(t, http.StatusTooManyRequests, res.Code)
}

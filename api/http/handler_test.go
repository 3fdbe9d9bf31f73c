package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pairbook/custody"
	"pairbook/domain/book"
	"pairbook/domain/registry"
	"pairbook/infra/sequence"
	"pairbook/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *custody.Ledger) {
	t.Helper()

	seq := sequence.New(0)
	reg := registry.New(seq.Next)
	ledger := custody.NewLedger()
	for _, asset := range []custody.AssetID{"ETH", "USDC"} {
		for _, p := range []book.ParticipantID{"alice", "bob"} {
			ledger.Mint(asset, p, 1000)
			ledger.Approve(asset, p, 1000)
		}
	}

	engine := service.NewEngine(reg, ledger, seq, nil, nil, zap.NewNop())
	srv := httptest.NewServer(NewRouter(NewHandler(engine, zap.NewNop())))
	t.Cleanup(srv.Close)
	return srv, ledger
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data := make([]byte, 0)
	if resp.Body != nil {
		defer resp.Body.Close()
		var out bytes.Buffer
		_, err = out.ReadFrom(resp.Body)
		require.NoError(t, err)
		data = out.Bytes()
	}
	return resp, data
}

func registerPair(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/pairs",
		map[string]string{"base": "ETH", "quote": "USDC"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRegisterPairEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/pairs",
		map[string]string{"base": "ETH", "quote": "USDC"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out registerPairResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "USDC", out.Base)
	require.Equal(t, "ETH", out.Quote)
	require.NotEmpty(t, out.Key)

	// Same unordered pair, swapped spelling.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/pairs",
		map[string]string{"base": "USDC", "quote": "ETH"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterPairValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/pairs",
		map[string]string{"base": "ETH"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/pairs",
		map[string]string{"base": "ETH", "quote": "ETH"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceOrderEndpoint(t *testing.T) {
	srv, ledger := newTestServer(t)
	registerPair(t, srv)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/books/ETH/USDC/orders",
		map[string]any{"participant": "alice", "side": "buy", "price": 100, "quantity": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out orderResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, uint64(100), out.Price)
	require.NotZero(t, out.PlacedAt)
	require.Equal(t, uint64(5), ledger.Escrowed("ETH"))

	// Duplicate participant on the same side.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/books/ETH/USDC/orders",
		map[string]any{"participant": "alice", "side": "buy", "price": 90, "quantity": 1})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unfunded participant.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/books/ETH/USDC/orders",
		map[string]any{"participant": "carol", "side": "buy", "price": 90, "quantity": 1})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPlaceOrderValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	registerPair(t, srv)

	cases := []map[string]any{
		{"participant": "alice", "side": "hold", "price": 100, "quantity": 5},
		{"participant": "alice", "side": "buy", "price": 0, "quantity": 5},
		{"participant": "alice", "side": "buy", "price": 100, "quantity": 0},
		{"side": "buy", "price": 100, "quantity": 5},
	}
	for i, c := range cases {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/books/ETH/USDC/orders", c)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "case %d", i)
	}
}

func TestPlaceOnUnknownPair(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/books/ETH/DAI/orders",
		map[string]any{"participant": "alice", "side": "buy", "price": 100, "quantity": 5})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelOrderEndpoint(t *testing.T) {
	srv, ledger := newTestServer(t)
	registerPair(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/books/ETH/USDC/orders",
		map[string]any{"participant": "alice", "side": "sell", "price": 120, "quantity": 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, uint64(3), ledger.Escrowed("USDC"))

	resp, body := doJSON(t, http.MethodDelete,
		srv.URL+"/api/v1/books/ETH/USDC/orders/sell?participant=alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out orderResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, uint64(120), out.Price)
	require.Equal(t, uint64(0), ledger.Escrowed("USDC"))

	// Nothing resting any more.
	resp, _ = doJSON(t, http.MethodDelete,
		srv.URL+"/api/v1/books/ETH/USDC/orders/sell?participant=alice", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Participant is mandatory.
	resp, _ = doJSON(t, http.MethodDelete,
		srv.URL+"/api/v1/books/ETH/USDC/orders/sell", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSideAndBestEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	registerPair(t, srv)

	for i, order := range []map[string]any{
		{"participant": "alice", "side": "buy", "price": 100, "quantity": 5},
		{"participant": "bob", "side": "buy", "price": 110, "quantity": 3},
	} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/books/ETH/USDC/orders", order)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "order %d", i)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/books/ETH/USDC/side/buy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var side sideResponse
	require.NoError(t, json.Unmarshal(body, &side))
	require.Equal(t, 2, side.Count)
	require.Equal(t, []string{"bob", "alice"}, side.Participants)
	require.Equal(t, []uint64{110, 100}, side.Prices)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/books/ETH/USDC/best/buy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var best orderResponse
	require.NoError(t, json.Unmarshal(body, &best))
	require.Equal(t, "bob", best.Participant)
	require.Equal(t, uint64(110), best.Price)

	// Empty side.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/books/ETH/USDC/best/sell", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSpreadEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	registerPair(t, srv)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/books/ETH/USDC/spread", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, order := range []map[string]any{
		{"participant": "alice", "side": "buy", "price": 95, "quantity": 1},
		{"participant": "bob", "side": "sell", "price": 105, "quantity": 1},
	} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/books/ETH/USDC/orders", order)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/books/ETH/USDC/spread", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out spreadResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, uint64(10), out.Spread)
}

func TestPairsAndLookupEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	registerPair(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/pairs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pairs pairsResponse
	require.NoError(t, json.Unmarshal(body, &pairs))
	require.Equal(t, 1, pairs.PairsSupported)
	require.Len(t, pairs.Pairs, 1)

	resp, body = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/v1/pairs/lookup?asset_a=%s&asset_b=%s", srv.URL, "USDC", "ETH"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lookup lookupResponse
	require.NoError(t, json.Unmarshal(body, &lookup))
	require.True(t, lookup.Found)
	require.Equal(t, "USDC", lookup.Base)

	resp, body = doJSON(t, http.MethodGet,
		srv.URL+"/api/v1/pairs/lookup?asset_a=ETH&asset_b=DAI", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &lookup))
	require.False(t, lookup.Found)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}

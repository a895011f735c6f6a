package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aptosedu/aptpay/types"
)

const testAddress = "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"

// extensionHandler stands in for the Petra provider endpoint.
type extensionHandler struct {
	address      string
	connected    atomic.Bool
	reject       bool
	submitStatus int
	submitBody   string
	calls        struct {
		connect atomic.Int32
		submit  atomic.Int32
	}
}

func (h *extensionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method + " " + r.URL.Path {
	case "GET /account":
		if !h.connected.Load() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"address": h.address})
	case "POST /connect":
		h.calls.connect.Add(1)
		if h.reject {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		h.connected.Store(true)
		json.NewEncoder(w).Encode(map[string]string{"address": h.address})
	case "POST /signAndSubmitTransaction":
		h.calls.submit.Add(1)
		if h.submitStatus != 0 {
			w.WriteHeader(h.submitStatus)
		}
		w.Write([]byte(h.submitBody))
	case "POST /disconnect":
		h.connected.Store(false)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestPetra(t *testing.T, ext *extensionHandler) (*Petra, *httptest.Server) {
	t.Helper()

	extSrv := httptest.NewServer(ext)
	t.Cleanup(extSrv.Close)

	// Fullnode stub: no resources for anyone.
	nodeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	t.Cleanup(nodeSrv.Close)

	p, err := NewPetra(types.BridgeConfig{
		Network:      types.NetworkTestnet,
		ExtensionURL: extSrv.URL,
		FullnodeURL:  nodeSrv.URL,
	}, nil)
	require.NoError(t, err)
	return p, extSrv
}

func TestNewPetraRequiresFullnode(t *testing.T) {
	_, err := NewPetra(types.BridgeConfig{Network: types.Network("nonet")}, nil)
	require.Error(t, err)

	var payErr *types.PayError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, types.ErrConfigError, payErr.Code)
}

func TestNewPetraDefaultsFullnodeFromNetwork(t *testing.T) {
	p, err := NewPetra(types.BridgeConfig{Network: types.NetworkTestnet}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.NetworkTestnet, p.Network())
	assert.False(t, p.IsAvailable())
}

func TestConnectExtensionMissing(t *testing.T) {
	p, err := NewPetra(types.BridgeConfig{Network: types.NetworkTestnet}, nil)
	require.NoError(t, err)

	_, err = p.Connect(context.Background())
	require.Error(t, err)

	var payErr *types.PayError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, types.ErrExtensionMissing, payErr.Code)
	assert.Contains(t, payErr.Message, "Petra Wallet is not installed")
}

func TestConnect(t *testing.T) {
	ext := &extensionHandler{address: testAddress}
	p, _ := newTestPetra(t, ext)

	address, err := p.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, address)
	assert.Equal(t, int32(1), ext.calls.connect.Load())

	// Second connect short-circuits through the account probe.
	address, err = p.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, address)
	assert.Equal(t, int32(1), ext.calls.connect.Load())
}

func TestConnectRejected(t *testing.T) {
	ext := &extensionHandler{address: testAddress, reject: true}
	p, _ := newTestPetra(t, ext)

	_, err := p.Connect(context.Background())
	require.Error(t, err)

	var payErr *types.PayError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, types.ErrUserRejected, payErr.Code)
}

func TestAccountFailuresAreQuiet(t *testing.T) {
	ext := &extensionHandler{address: testAddress}
	p, _ := newTestPetra(t, ext)

	address, err := p.Account(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, address)
}

func TestSubmitTransfer(t *testing.T) {
	ext := &extensionHandler{address: testAddress, submitBody: `{"hash":"0xabcd"}`}
	p, _ := newTestPetra(t, ext)

	result := p.SubmitTransfer(context.Background(), "0x1", decimal.NewFromInt(2))
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, "0xabcd", result.Hash)
	assert.Empty(t, result.Error)
}

func TestSubmitTransferPayloadShape(t *testing.T) {
	var captured transferPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signAndSubmitTransaction" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"hash":"0xfeed"}`))
	}))
	defer srv.Close()

	p, err := NewPetra(types.BridgeConfig{
		Network:      types.NetworkTestnet,
		ExtensionURL: srv.URL,
	}, nil)
	require.NoError(t, err)

	result := p.SubmitTransfer(context.Background(), "0xdead", decimal.RequireFromString("1.23456789"))
	require.True(t, result.Success)

	assert.Equal(t, "entry_function_payload", captured.Type)
	assert.Equal(t, "0x1::coin::transfer", captured.Function)
	assert.Equal(t, []string{"0x1::aptos_coin::AptosCoin"}, captured.TypeArguments)
	assert.Equal(t, []string{"0xdead", "123456789"}, captured.Arguments)
}

func TestSubmitTransferInvalidInputNeverReachesWire(t *testing.T) {
	ext := &extensionHandler{address: testAddress}
	p, _ := newTestPetra(t, ext)

	result := p.SubmitTransfer(context.Background(), "", decimal.NewFromInt(1))
	assert.False(t, result.Success)
	assert.Equal(t, types.MsgInvalidTransfer, result.Error)

	result = p.SubmitTransfer(context.Background(), "0x1", decimal.Zero)
	assert.False(t, result.Success)
	assert.Equal(t, types.MsgInvalidTransfer, result.Error)

	result = p.SubmitTransfer(context.Background(), "0x1", decimal.NewFromInt(-1))
	assert.False(t, result.Success)
	assert.Equal(t, types.MsgInvalidTransfer, result.Error)

	assert.Equal(t, int32(0), ext.calls.submit.Load())
}

func TestSubmitTransferMissingHash(t *testing.T) {
	ext := &extensionHandler{address: testAddress, submitBody: `{}`}
	p, _ := newTestPetra(t, ext)

	result := p.SubmitTransfer(context.Background(), "0x1", decimal.NewFromInt(1))
	assert.False(t, result.Success)
	assert.Equal(t, types.MsgNoHashReturned, result.Error)
}

func TestSubmitTransferRejectedWithMessage(t *testing.T) {
	ext := &extensionHandler{
		address:      testAddress,
		submitStatus: http.StatusBadRequest,
		submitBody:   `{"message":"sequence number too old"}`,
	}
	p, _ := newTestPetra(t, ext)

	result := p.SubmitTransfer(context.Background(), "0x1", decimal.NewFromInt(1))
	assert.False(t, result.Success)
	assert.Equal(t, "sequence number too old", result.Error)
}

func TestSubmitTransferRejectedWithoutMessage(t *testing.T) {
	ext := &extensionHandler{address: testAddress, submitStatus: http.StatusInternalServerError}
	p, _ := newTestPetra(t, ext)

	result := p.SubmitTransfer(context.Background(), "0x1", decimal.NewFromInt(1))
	assert.False(t, result.Success)
	assert.Equal(t, types.MsgTransferFailed, result.Error)
}

func TestSubmitTransferTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	p, err := NewPetra(types.BridgeConfig{
		Network:      types.NetworkTestnet,
		ExtensionURL: srv.URL,
	}, nil)
	require.NoError(t, err)

	result := p.SubmitTransfer(context.Background(), "0x1", decimal.NewFromInt(1))
	assert.False(t, result.Success)
	assert.Equal(t, types.MsgTransferFailed, result.Error)
}

func TestDisconnect(t *testing.T) {
	ext := &extensionHandler{address: testAddress}
	p, _ := newTestPetra(t, ext)

	_, err := p.Connect(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Disconnect(context.Background()))
	assert.False(t, ext.connected.Load())
}

package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aptosedu/aptpay/logger"
	"github.com/aptosedu/aptpay/types"
	"github.com/aptosedu/aptpay/utils"
)

// Petra bridges to a Petra wallet provider endpoint for account and
// signing operations, and to an Aptos fullnode for balance reads.
type Petra struct {
	network      types.Network
	extensionURL string
	fullnode     *FullnodeClient
	client       *http.Client
	log          logger.Logger
}

var _ Bridge = (*Petra)(nil)

// NewPetra creates a Petra bridge from config. The fullnode URL defaults
// to the network's public endpoint when unset.
func NewPetra(cfg types.BridgeConfig, log logger.Logger) (*Petra, error) {
	fullnodeURL := cfg.FullnodeURL
	if fullnodeURL == "" {
		fullnodeURL = cfg.Network.FullnodeURL()
	}
	if fullnodeURL == "" {
		return nil, &types.PayError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("no fullnode endpoint for network %q", cfg.Network),
		}
	}

	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	client := &http.Client{Timeout: timeout}

	if log == nil {
		log = logger.NoopLogger{}
	}

	return &Petra{
		network:      cfg.Network,
		extensionURL: strings.TrimRight(cfg.ExtensionURL, "/"),
		fullnode:     NewFullnodeClient(strings.TrimRight(fullnodeURL, "/"), client),
		client:       client,
		log:          log,
	}, nil
}

// IsAvailable reports whether a provider endpoint is configured.
func (p *Petra) IsAvailable() bool {
	return p.extensionURL != ""
}

type accountResponse struct {
	Address string `json:"address"`
}

// Connect returns the wallet's account address, prompting the user through
// the extension if no account is exposed yet.
func (p *Petra) Connect(ctx context.Context) (string, error) {
	if !p.IsAvailable() {
		return "", &types.PayError{
			Code:    types.ErrExtensionMissing,
			Message: "Petra Wallet is not installed. Please install it from https://petra.app/",
		}
	}

	// Already connected: do not re-prompt.
	if addr, _ := p.Account(ctx); addr != "" {
		return addr, nil
	}

	status, body, err := p.call(ctx, http.MethodPost, "/connect", nil)
	if err != nil {
		p.log.Error("petra connect failed", map[string]any{"error": err.Error()})
		return "", &types.PayError{Code: types.ErrConnectFailed, Message: "Failed to connect to Petra Wallet"}
	}
	if status == http.StatusForbidden || status == http.StatusUnauthorized {
		return "", &types.PayError{Code: types.ErrUserRejected, Message: "Connection request was rejected"}
	}
	if status != http.StatusOK {
		return "", &types.PayError{
			Code:    types.ErrConnectFailed,
			Message: fmt.Sprintf("Failed to connect to Petra Wallet (status %d)", status),
		}
	}

	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Address == "" {
		return "", &types.PayError{Code: types.ErrConnectFailed, Message: "No address returned from Petra Wallet"}
	}
	return resp.Address, nil
}

// Account probes for an already-connected address without prompting.
func (p *Petra) Account(ctx context.Context) (string, error) {
	if !p.IsAvailable() {
		return "", nil
	}

	status, body, err := p.call(ctx, http.MethodGet, "/account", nil)
	if err != nil || status != http.StatusOK {
		return "", nil
	}

	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil
	}
	return resp.Address, nil
}

// Balance reads the APT balance from the fullnode. Failures resolve to
// zero; balance is display data only.
func (p *Petra) Balance(ctx context.Context, address string) decimal.Decimal {
	if address == "" {
		return decimal.Zero
	}

	balance, err := p.fullnode.CoinBalance(ctx, address)
	if err != nil {
		p.log.Warn("balance query failed", map[string]any{
			"address": utils.ShortenAddress(address),
			"network": p.network.String(),
			"error":   err.Error(),
		})
		return decimal.Zero
	}
	return balance
}

type transferPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []string `json:"arguments"`
}

type submitResponse struct {
	Hash    string `json:"hash"`
	Message string `json:"message,omitempty"`
}

// SubmitTransfer signs and submits an APT transfer through the extension.
// Invalid input never reaches the wire.
func (p *Petra) SubmitTransfer(ctx context.Context, to string, amount decimal.Decimal) *types.TransferResult {
	if to == "" || !amount.IsPositive() {
		return &types.TransferResult{Success: false, Error: types.MsgInvalidTransfer}
	}
	if !p.IsAvailable() {
		return &types.TransferResult{Success: false, Error: types.MsgExtensionMissing}
	}

	payload := transferPayload{
		Type:          types.EntryFunctionPayload,
		Function:      types.CoinTransferFunction,
		TypeArguments: []string{types.AptosCoinType},
		Arguments:     []string{to, utils.OctasString(amount)},
	}

	status, body, err := p.call(ctx, http.MethodPost, "/signAndSubmitTransaction", payload)
	if err != nil {
		p.log.Error("transaction failed", map[string]any{"error": err.Error()})
		return &types.TransferResult{Success: false, Error: types.MsgTransferFailed}
	}

	var resp submitResponse
	if unmarshalErr := json.Unmarshal(body, &resp); unmarshalErr != nil {
		resp = submitResponse{}
	}

	if status != http.StatusOK {
		msg := resp.Message
		if msg == "" {
			msg = types.MsgTransferFailed
		}
		p.log.Error("transaction rejected", map[string]any{"status": status, "error": msg})
		return &types.TransferResult{Success: false, Error: msg}
	}

	if resp.Hash == "" {
		return &types.TransferResult{Success: false, Error: types.MsgNoHashReturned}
	}
	return &types.TransferResult{Success: true, Hash: resp.Hash}
}

// Disconnect tells the extension to drop the connection. Best effort.
func (p *Petra) Disconnect(ctx context.Context) error {
	if !p.IsAvailable() {
		return nil
	}

	status, _, err := p.call(ctx, http.MethodPost, "/disconnect", nil)
	if err != nil {
		return fmt.Errorf("disconnect failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("disconnect returned status %d", status)
	}
	return nil
}

func (p *Petra) Network() types.Network { return p.network }

func (p *Petra) call(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.extensionURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, contents, nil
}

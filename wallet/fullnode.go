package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/aptosedu/aptpay/types"
	"github.com/aptosedu/aptpay/utils"
)

// FullnodeClient reads account state from an Aptos fullnode REST endpoint.
type FullnodeClient struct {
	baseURL string
	client  *http.Client
}

func NewFullnodeClient(baseURL string, client *http.Client) *FullnodeClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &FullnodeClient{baseURL: baseURL, client: client}
}

type accountResource struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type coinStoreData struct {
	Coin struct {
		Value string `json:"value"`
	} `json:"coin"`
}

// AccountResources fetches every resource attached to the account.
func (f *FullnodeClient) AccountResources(ctx context.Context, address string) ([]accountResource, error) {
	url := fmt.Sprintf("%s/accounts/%s/resources", f.baseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fullnode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fullnode returned status %d", resp.StatusCode)
	}

	var resources []accountResource
	if err := json.NewDecoder(resp.Body).Decode(&resources); err != nil {
		return nil, fmt.Errorf("failed to decode account resources: %w", err)
	}
	return resources, nil
}

// CoinBalance returns the APT balance of the address read from its
// CoinStore resource. A missing coin resource is a zero balance, not
// an error.
func (f *FullnodeClient) CoinBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	resources, err := f.AccountResources(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	for _, res := range resources {
		if res.Type != types.CoinStoreResource {
			continue
		}
		var store coinStoreData
		if err := json.Unmarshal(res.Data, &store); err != nil {
			return decimal.Zero, fmt.Errorf("failed to decode coin store: %w", err)
		}
		if store.Coin.Value == "" {
			return decimal.Zero, nil
		}
		return utils.FromOctas(store.Coin.Value)
	}

	return decimal.Zero, nil
}

// Package rpc implements the JSON-RPC account reader and transaction
// submitter the client packages depend on.
package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"

	"github.com/solworks/lookup-registry/model/lookup"
)

const defaultRequestTimeout = 30 * time.Second

// Client talks JSON-RPC to one node endpoint. It is safe for concurrent
// use.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

func NewClient(endpoint string, log zerolog.Logger, options ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: defaultRequestTimeout},
		log:      log.With().Str("component", "rpc_client").Logger(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("could not encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w (%s)", method, lookup.ErrTransport, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read %s response: %w", method, lookup.ErrTransport)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned HTTP %d: %w", method, resp.StatusCode, lookup.ErrTransport)
	}

	var decoded rpcResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("could not decode %s response: %w", method, lookup.ErrTransport)
	}
	if decoded.Error != nil {
		c.log.Debug().Str("method", method).Int("code", decoded.Error.Code).
			Msg("node rejected request")
		return fmt.Errorf("%s failed: %s: %w", method, decoded.Error, lookup.ErrTransport)
	}
	if result != nil {
		if err := json.Unmarshal(decoded.Result, result); err != nil {
			return fmt.Errorf("could not decode %s result: %w", method, lookup.ErrTransport)
		}
	}

	return nil
}

type accountInfo struct {
	Data []string `json:"data"`
}

func (a *accountInfo) bytes() ([]byte, error) {
	if len(a.Data) < 1 {
		return nil, fmt.Errorf("account data missing: %w", lookup.ErrTransport)
	}
	data, err := base64.StdEncoding.DecodeString(a.Data[0])
	if err != nil {
		return nil, fmt.Errorf("could not decode account data: %w", lookup.ErrTransport)
	}
	return data, nil
}

// GetAccount returns the raw data of one account.
// Expected errors: lookup.ErrNotFound if the account does not exist.
func (c *Client) GetAccount(ctx context.Context, address lookup.Address) ([]byte, error) {
	var result struct {
		Value *accountInfo `json:"value"`
	}
	params := []interface{}{
		address.String(),
		map[string]interface{}{"encoding": "base64"},
	}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, fmt.Errorf("account %s: %w", address, lookup.ErrNotFound)
	}
	return result.Value.bytes()
}

// GetMultipleAccounts returns the raw data of several accounts in one call.
// Missing accounts yield nil slots.
func (c *Client) GetMultipleAccounts(ctx context.Context, addresses []lookup.Address) ([][]byte, error) {
	encoded := make([]string, len(addresses))
	for i, address := range addresses {
		encoded[i] = address.String()
	}
	var result struct {
		Value []*accountInfo `json:"value"`
	}
	params := []interface{}{
		encoded,
		map[string]interface{}{"encoding": "base64"},
	}
	if err := c.call(ctx, "getMultipleAccounts", params, &result); err != nil {
		return nil, err
	}
	if len(result.Value) != len(addresses) {
		return nil, fmt.Errorf("expected %d accounts, got %d: %w", len(addresses), len(result.Value), lookup.ErrTransport)
	}

	accounts := make([][]byte, len(addresses))
	for i, value := range result.Value {
		if value == nil {
			continue
		}
		data, err := value.bytes()
		if err != nil {
			return nil, err
		}
		accounts[i] = data
	}
	return accounts, nil
}

// GetSlot returns the current slot.
func (c *Client) GetSlot(ctx context.Context) (uint64, error) {
	var slot uint64
	if err := c.call(ctx, "getSlot", nil, &slot); err != nil {
		return 0, err
	}
	return slot, nil
}

// GetLatestBlockhash returns a recent blockhash for transaction signing.
func (c *Client) GetLatestBlockhash(ctx context.Context) ([32]byte, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getLatestBlockhash", nil, &result); err != nil {
		return [32]byte{}, err
	}
	decoded, err := base58.Decode(result.Value.Blockhash)
	if err != nil || len(decoded) != 32 {
		return [32]byte{}, fmt.Errorf("invalid blockhash %q: %w", result.Value.Blockhash, lookup.ErrTransport)
	}
	var blockhash [32]byte
	copy(blockhash[:], decoded)
	return blockhash, nil
}

// SendTransaction submits a signed transaction and returns its signature.
func (c *Client) SendTransaction(ctx context.Context, signed []byte, skipPreflight bool) (string, error) {
	var signature string
	params := []interface{}{
		base64.StdEncoding.EncodeToString(signed),
		map[string]interface{}{
			"encoding":      "base64",
			"skipPreflight": skipPreflight,
		},
	}
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

// ConfirmTransaction reports whether the transaction has been finalized.
func (c *Client) ConfirmTransaction(ctx context.Context, signature string) (bool, error) {
	var result struct {
		Value []*struct {
			ConfirmationStatus string          `json:"confirmationStatus"`
			Err                json.RawMessage `json:"err"`
		} `json:"value"`
	}
	params := []interface{}{
		[]string{signature},
		map[string]interface{}{"searchTransactionHistory": false},
	}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return false, err
	}
	if len(result.Value) != 1 || result.Value[0] == nil {
		return false, nil
	}
	status := result.Value[0]
	if len(status.Err) > 0 && string(status.Err) != "null" {
		return false, fmt.Errorf("transaction %s failed: %s: %w", signature, status.Err, lookup.ErrTransport)
	}
	return status.ConfirmationStatus == "finalized", nil
}

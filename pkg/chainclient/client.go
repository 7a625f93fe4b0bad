// Package chainclient is a Go client for the chainapi HTTP API.
package chainclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	seedHeader        = "X-Seed"
	idempotencyHeader = "Idempotency-Key"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status    int
	Code      string
	Message   string
	TxHash    string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("chainapi: status %d", e.Status)
	}
	return fmt.Sprintf("chainapi: %s (%d): %s", e.Code, e.Status, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		TxHash  string `json:"tx_hash"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

type Option func(*Client)

func WithSeed(seed string) Option {
	return func(c *Client) { c.seed = seed }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithRetries retries idempotent reads on transport errors and 5xx answers.
func WithRetries(count int) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count).
			SetRetryWaitTime(200 * time.Millisecond).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
					return false
				}
				return err != nil || resp.StatusCode() >= http.StatusInternalServerError
			})
	}
}

type Client struct {
	http *resty.Client
	seed string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(3 * time.Minute).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type SubmitRequest struct {
	Wallet      string
	Destination string
	Value       string
	Data        string
	// IdempotencyKey makes a retried submit return the first result.
	IdempotencyKey string
}

type SubmitResult struct {
	TxHash  string `json:"txHash"`
	Sender  string `json:"sender"`
	TxIndex string `json:"txIndex"`
	To      string `json:"to"`
	Value   string `json:"value"`
	Data    string `json:"data"`
}

type ConfirmResult struct {
	TxHash  string `json:"txHash"`
	Sender  string `json:"sender"`
	TxIndex string `json:"txIndex"`
}

type ExecuteResult struct {
	TxHash          string `json:"txHash"`
	Sender          string `json:"sender"`
	TxIndex         string `json:"txIndex"`
	DeployedAddress string `json:"deployedAddress,omitempty"`
}

type DepositResult struct {
	TxHash          string `json:"txHash"`
	Sender          string `json:"sender"`
	Value           string `json:"value"`
	ContractBalance string `json:"contractBalance"`
}

type WalletTransaction struct {
	Index            string `json:"index"`
	To               string `json:"to"`
	Value            string `json:"value"`
	Data             string `json:"data"`
	Executed         bool   `json:"executed"`
	NumConfirmations string `json:"numConfirmations"`
}

// AddressFromSeed returns the address the service derives from seedPhrase.
func (c *Client) AddressFromSeed(ctx context.Context, seedPhrase string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"seedPhrase": seedPhrase}).
		SetError(&errorEnvelope{}).
		Post("/address-from-seed")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.String()), nil
}

func (c *Client) DeployWallet(ctx context.Context, owners []string, confirmations uint64) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	body := map[string]any{"owners": owners, "confirmations": confirmations}
	if err := c.post(ctx, "/multi-sig/deploy", "", body, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

// DeploySalary deploys a payroll contract that authorizedWallet may pay out
// from. Its address is the payrollAddress of a license.
func (c *Client) DeploySalary(ctx context.Context, authorizedWallet string) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	body := map[string]string{"authorizedWallet": authorizedWallet}
	if err := c.post(ctx, "/salaries/deploy", "", body, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

func (c *Client) Owners(ctx context.Context, wallet string) ([]string, error) {
	var out struct {
		Owners []string `json:"owners"`
	}
	if err := c.get(ctx, "/multi-sig/"+wallet+"/owners", nil, &out); err != nil {
		return nil, err
	}
	return out.Owners, nil
}

func (c *Client) TransactionCount(ctx context.Context, wallet string) (string, error) {
	var out struct {
		Count string `json:"count"`
	}
	if err := c.get(ctx, "/multi-sig/"+wallet+"/transaction-count", nil, &out); err != nil {
		return "", err
	}
	return out.Count, nil
}

func (c *Client) Transaction(ctx context.Context, wallet string, index uint64) (WalletTransaction, error) {
	var out WalletTransaction
	err := c.get(ctx, "/multi-sig/"+wallet+"/transactions/"+strconv.FormatUint(index, 10), nil, &out)
	return out, err
}

func (c *Client) Balance(ctx context.Context, wallet string) (string, error) {
	var out struct {
		Balance string `json:"balance"`
	}
	if err := c.get(ctx, "/multi-sig/"+wallet+"/balance", nil, &out); err != nil {
		return "", err
	}
	return out.Balance, nil
}

func (c *Client) FutureAddress(ctx context.Context, wallet string) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := c.get(ctx, "/multi-sig/"+wallet+"/future-address", nil, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	var out SubmitResult
	body := map[string]string{
		"contractAddress": req.Wallet,
		"destination":     req.Destination,
		"value":           req.Value,
		"data":            req.Data,
	}
	err := c.post(ctx, "/multi-sig/submit-transaction", req.IdempotencyKey, body, &out)
	return out, err
}

func (c *Client) Confirm(ctx context.Context, wallet string, index uint64) (ConfirmResult, error) {
	var out ConfirmResult
	err := c.post(ctx, "/multi-sig/confirm-transaction", "", map[string]any{"contractAddress": wallet, "index": index}, &out)
	return out, err
}

func (c *Client) Revoke(ctx context.Context, wallet string, index uint64) (ConfirmResult, error) {
	var out ConfirmResult
	err := c.post(ctx, "/multi-sig/revoke-confirmation", "", map[string]any{"contractAddress": wallet, "index": index}, &out)
	return out, err
}

func (c *Client) Execute(ctx context.Context, wallet string, index uint64, isDeploy bool) (ExecuteResult, error) {
	var out ExecuteResult
	body := map[string]any{"contractAddress": wallet, "index": index, "isDeploy": isDeploy}
	err := c.post(ctx, "/multi-sig/execute-transaction", "", body, &out)
	return out, err
}

// Deposit sends value, in ether, to the wallet.
func (c *Client) Deposit(ctx context.Context, wallet, value string) (DepositResult, error) {
	var out DepositResult
	err := c.post(ctx, "/multi-sig/deposit", "", map[string]string{"contractAddress": wallet, "value": value}, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		SetError(&errorEnvelope{}).
		Get(path)
	return check(resp, err)
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, body, out any) error {
	if c.seed == "" {
		return errors.New("chainclient: a seed is required for mutations")
	}
	req := c.http.R().
		SetContext(ctx).
		SetHeader(seedHeader, c.seed).
		SetBody(body).
		SetResult(out).
		SetError(&errorEnvelope{})
	if idempotencyKey != "" {
		req.SetHeader(idempotencyHeader, idempotencyKey)
	}
	resp, err := req.Post(path)
	return check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(err, "chainapi request")
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if env, ok := resp.Error().(*errorEnvelope); ok && env != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.TxHash = env.Error.TxHash
		apiErr.RequestID = env.RequestID
	}
	return apiErr
}

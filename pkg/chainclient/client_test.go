package chainclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wallet = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	owner  = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	seed   = "000102030405060708090a0b0c0d0e0f"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAddressFromSeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/address-from-seed", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test phrase", body["seedPhrase"])
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(owner))
	}))
	defer srv.Close()

	address, err := New(srv.URL).AddressFromSeed(context.Background(), "test phrase")
	require.NoError(t, err)
	assert.Equal(t, owner, address)
}

func TestSubmitSendsSeedAndIdempotencyKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/multi-sig/submit-transaction", r.URL.Path)
		assert.Equal(t, seed, r.Header.Get(seedHeader))
		assert.Equal(t, "k-1", r.Header.Get(idempotencyHeader))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, wallet, body["contractAddress"])
		assert.Equal(t, owner, body["destination"])
		writeJSON(w, http.StatusOK, SubmitResult{TxHash: "0x01", TxIndex: "4", To: owner})
	}))
	defer srv.Close()

	result, err := New(srv.URL, WithSeed(seed)).Submit(context.Background(), SubmitRequest{
		Wallet:         wallet,
		Destination:    owner,
		Value:          "0",
		Data:           "0x",
		IdempotencyKey: "k-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "4", result.TxIndex)
	assert.Equal(t, "0x01", result.TxHash)
}

func TestDeploySalary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/salaries/deploy", r.URL.Path)
		assert.Equal(t, seed, r.Header.Get(seedHeader))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, wallet, body["authorizedWallet"])
		writeJSON(w, http.StatusCreated, map[string]string{"address": owner})
	}))
	defer srv.Close()

	address, err := New(srv.URL, WithSeed(seed)).DeploySalary(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, owner, address)

	_, err = New(srv.URL).DeploySalary(context.Background(), wallet)
	assert.Error(t, err)
}

func TestMutationWithoutSeed(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Deposit(context.Background(), wallet, "1")
	assert.Error(t, err)
}

func TestAPIErrorDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      map[string]string{"code": "event_not_found", "message": "event Deposit not found", "tx_hash": "0xfeed"},
			"request_id": "req-9",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithSeed(seed)).Deposit(context.Background(), wallet, "1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "event_not_found", apiErr.Code)
	assert.Equal(t, "0xfeed", apiErr.TxHash)
	assert.Equal(t, "req-9", apiErr.RequestID)
}

func TestReads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/multi-sig/" + wallet + "/owners":
			writeJSON(w, http.StatusOK, map[string][]string{"owners": {owner}})
		case "/multi-sig/" + wallet + "/transaction-count":
			writeJSON(w, http.StatusOK, map[string]string{"count": "2"})
		case "/multi-sig/" + wallet + "/transactions/1":
			writeJSON(w, http.StatusOK, WalletTransaction{Index: "1", To: owner, Executed: true})
		case "/multi-sig/" + wallet + "/balance":
			writeJSON(w, http.StatusOK, map[string]string{"balance": "5"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	owners, err := c.Owners(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, []string{owner}, owners)

	count, err := c.TransactionCount(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	tx, err := c.Transaction(ctx, wallet, 1)
	require.NoError(t, err)
	assert.True(t, tx.Executed)

	balance, err := c.Balance(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, "5", balance)

	_, err = c.FutureAddress(ctx, wallet)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestRetriesReads(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": map[string]string{"code": "upstream_error"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"balance": "1"})
	}))
	defer srv.Close()

	balance, err := New(srv.URL, WithRetries(2)).Balance(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, "1", balance)
	assert.Equal(t, 2, calls)
}

func TestExecuteDeploy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["isDeploy"])
		assert.Equal(t, float64(3), body["index"])
		writeJSON(w, http.StatusOK, ExecuteResult{TxHash: "0x02", DeployedAddress: owner})
	}))
	defer srv.Close()

	result, err := New(srv.URL, WithSeed(seed)).Execute(context.Background(), wallet, 3, true)
	require.NoError(t, err)
	assert.Equal(t, owner, result.DeployedAddress)
}

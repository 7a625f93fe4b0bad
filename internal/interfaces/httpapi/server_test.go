package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"chainapi/internal/application"
	"chainapi/internal/domain"
	"chainapi/internal/infrastructure/idempotency"
	"chainapi/internal/infrastructure/signer"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSeed   = "000102030405060708090a0b0c0d0e0f"
	walletAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	ownerAddr  = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

type mockMultiSig struct {
	mu       sync.Mutex
	entered  chan struct{}
	release  chan struct{}
	submits  []domain.WalletRef
	requests []domain.TransactionRequest
	err      error
	events   []domain.ContractEvent
	from, to *uint64
}

func (m *mockMultiSig) Deploy(_ context.Context, _ string, _ []string, _ uint64) (string, error) {
	return walletAddr, m.err
}

func (m *mockMultiSig) Owners(_ context.Context, _ string) ([]string, error) {
	return []string{ownerAddr}, m.err
}

func (m *mockMultiSig) Submit(_ context.Context, ref domain.WalletRef, req domain.TransactionRequest) (domain.SubmitResult, error) {
	m.mu.Lock()
	m.submits = append(m.submits, ref)
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.release
	}
	if m.err != nil {
		return domain.SubmitResult{}, m.err
	}
	return domain.SubmitResult{TxHash: "0x01", Sender: ownerAddr, TxIndex: "3", To: req.Destination, Value: "0", Data: "0x"}, nil
}

func (m *mockMultiSig) Confirm(_ context.Context, _ domain.WalletRef, index uint64) (domain.ConfirmResult, error) {
	return domain.ConfirmResult{TxHash: "0x02", Sender: ownerAddr, TxIndex: "1"}, m.err
}

func (m *mockMultiSig) Revoke(_ context.Context, _ domain.WalletRef, _ uint64) (domain.ConfirmResult, error) {
	return domain.ConfirmResult{TxHash: "0x03"}, m.err
}

func (m *mockMultiSig) Execute(_ context.Context, _ domain.WalletRef, _ uint64, isDeploy bool) (domain.ExecuteResult, error) {
	result := domain.ExecuteResult{TxHash: "0x04"}
	if isDeploy {
		result.DeployedAddress = ownerAddr
	}
	return result, m.err
}

func (m *mockMultiSig) TransactionCount(_ context.Context, _ string) (string, error) {
	return "7", m.err
}

func (m *mockMultiSig) Transaction(_ context.Context, _ string, index uint64) (domain.WalletTransaction, error) {
	return domain.WalletTransaction{Index: "2", To: ownerAddr, Value: "0", Data: "0x", NumConfirmations: "1"}, m.err
}

func (m *mockMultiSig) Deposit(_ context.Context, _ domain.WalletRef, value string) (domain.DepositResult, error) {
	return domain.DepositResult{TxHash: "0x05", Value: value}, m.err
}

func (m *mockMultiSig) FutureAddress(_ context.Context, _ string) (string, error) {
	return ownerAddr, m.err
}

func (m *mockMultiSig) Balance(_ context.Context, _ string) (string, error) {
	return "1000", m.err
}

func (m *mockMultiSig) Events(_ context.Context, _ string, from, to *uint64) ([]domain.ContractEvent, error) {
	m.from, m.to = from, to
	return m.events, m.err
}

type mockLicense struct {
	deployed domain.LicenseDeployment
	err      error
}

func (m *mockLicense) Deploy(_ context.Context, _ string, req domain.LicenseDeployment) (string, error) {
	m.deployed = req
	return walletAddr, m.err
}

func (m *mockLicense) Info(_ context.Context, address string) (domain.LicenseInfo, error) {
	return domain.LicenseInfo{ContractAddress: address, Owners: []string{ownerAddr}, Shares: []string{"100"}}, m.err
}

func (m *mockLicense) Share(_ context.Context, _, _ string) (string, error) {
	return "40", m.err
}

func (m *mockLicense) Owners(_ context.Context, _ string) ([]string, error) {
	return []string{ownerAddr}, m.err
}

func (m *mockLicense) Request(_ context.Context, _, _, _ string) (domain.SubmitResult, error) {
	return domain.SubmitResult{TxHash: "0x06", TxIndex: "0"}, m.err
}

type mockSalary struct {
	wallets []string
	err     error
}

func (m *mockSalary) Deploy(_ context.Context, _, authorizedWallet string) (string, error) {
	m.wallets = append(m.wallets, authorizedWallet)
	return ownerAddr, m.err
}

type mockJournal struct {
	filter application.JournalQueryFilter
	err    error
}

func (m *mockJournal) Query(_ context.Context, filter application.JournalQueryFilter) ([]domain.JournalEntry, error) {
	m.filter = filter
	if m.err != nil {
		return nil, m.err
	}
	return []domain.JournalEntry{{ChainID: 31337, TxHash: "0x01", Method: "submitTransaction"}}, nil
}

type mockRPC struct {
	err error
}

func (m *mockRPC) LatestBlockNumber(context.Context) (uint64, error) {
	return 12, m.err
}

type memoryStore struct {
	mu      sync.Mutex
	records map[idempotency.Key]idempotency.Record
}

func (s *memoryStore) Reserve(_ context.Context, key idempotency.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		return false, nil
	}
	if s.records == nil {
		s.records = make(map[idempotency.Key]idempotency.Record)
	}
	s.records[key] = idempotency.Record{Pending: true}
	return true, nil
}

func (s *memoryStore) Get(_ context.Context, key idempotency.Key) (idempotency.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key]
	return record, ok, nil
}

func (s *memoryStore) Save(_ context.Context, key idempotency.Key, record idempotency.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record
	return nil
}

func (s *memoryStore) Release(_ context.Context, key idempotency.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	multisig *mockMultiSig
	license  *mockLicense
	salary   *mockSalary
	journal  *mockJournal
	rpc      *mockRPC
	store    *memoryStore
	signers  *signer.Provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	signers, err := signer.NewProvider("")
	require.NoError(t, err)
	env := &testEnv{
		multisig: &mockMultiSig{},
		license:  &mockLicense{},
		salary:   &mockSalary{},
		journal:  &mockJournal{},
		rpc:      &mockRPC{},
		store:    &memoryStore{},
		signers:  signers,
	}
	env.server, err = NewServer(Deps{
		MultiSig:    env.multisig,
		License:     env.license,
		Salary:      env.salary,
		Journal:     env.journal,
		Signers:     signers,
		RPC:         env.rpc,
		Idempotency: env.store,
		BuildInfo:   BuildInfo{Version: "1.2.3", Commit: "abc"},
	})
	require.NoError(t, err)
	env.handler = env.server.Handler()
	return env
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewServerRequiresDeps(t *testing.T) {
	_, err := NewServer(Deps{})
	assert.Error(t, err)
}

func TestHealthAndVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/version", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc","buildTime":""}`, rec.Body.String())
}

func TestReadyReportsRPCFailure(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/readyz", "", nil).Code)

	env.rpc.err = errors.New("dial tcp: refused")
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/readyz", "", nil).Code)
}

func TestAddressFromSeed(t *testing.T) {
	env := newTestEnv(t)
	want, err := env.signers.Address(testSeed)
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/address-from-seed", `{"seedPhrase":"`+testSeed+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, want.Hex(), rec.Body.String())

	rec = env.do(http.MethodPost, "/address-from-seed", `{"seedPhrase":"not a valid mnemonic"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitTransaction(t *testing.T) {
	env := newTestEnv(t)
	body := `{"contractAddress":"` + walletAddr + `","destination":"` + ownerAddr + `","value":"0","data":"0x"}`

	rec := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, map[string]string{seedHeader: testSeed})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "3", result.TxIndex)
	assert.Equal(t, ownerAddr, result.To)

	require.Len(t, env.multisig.submits, 1)
	assert.Equal(t, domain.WalletRef{Address: walletAddr, Seed: testSeed}, env.multisig.submits[0])
	assert.Equal(t, "0x", env.multisig.requests[0].Data)
}

func TestMutationRequiresSeed(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/multi-sig/deposit", `{"contractAddress":"`+walletAddr+`","value":"1"}`, map[string]string{requestIDHeader: "req-1"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Contains(t, body.Error.Message, seedHeader)
	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, "req-1", rec.Header().Get(requestIDHeader))
}

func TestRequestValidation(t *testing.T) {
	env := newTestEnv(t)
	headers := map[string]string{seedHeader: testSeed}
	cases := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/multi-sig/confirm-transaction", `{`},
		{"bad contract address", "/multi-sig/confirm-transaction", `{"contractAddress":"0x12","index":1}`},
		{"missing index", "/multi-sig/execute-transaction", `{"contractAddress":"` + walletAddr + `"}`},
		{"no owners", "/multi-sig/deploy", `{"owners":[],"confirmations":1}`},
		{"zero share", "/license/deploy", `{"multiSigWallet":"` + walletAddr + `","owners":["` + ownerAddr + `"],"shares":[0],"payrollAddress":"` + walletAddr + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, tc.path, tc.body, headers)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "validation_error", decodeError(t, rec).Error.Code)
		})
	}
}

func TestIndexZeroIsAccepted(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/multi-sig/confirm-transaction", `{"contractAddress":"`+walletAddr+`","index":0}`, map[string]string{seedHeader: testSeed})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"upstream", domain.Upstream("submitTransaction", errors.New("nonce too low")), http.StatusBadGateway, "upstream_error"},
		{"event not found", &domain.EventNotFoundError{Event: "SubmitTransaction", TxHash: "0xfeed"}, http.StatusUnprocessableEntity, "event_not_found"},
		{"validation", domain.Invalid("bad value"), http.StatusBadRequest, "validation_error"},
		{"internal", errors.New("artifact MultiSigWallet not found"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.multisig.err = tc.err
			rec := env.do(http.MethodPost, "/multi-sig/submit-transaction", `{"contractAddress":"`+walletAddr+`"}`, map[string]string{seedHeader: testSeed})
			require.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestEventNotFoundCarriesTxHash(t *testing.T) {
	env := newTestEnv(t)
	env.multisig.err = &domain.EventNotFoundError{Event: "Deposit", TxHash: "0xfeed"}
	rec := env.do(http.MethodPost, "/multi-sig/deposit", `{"contractAddress":"`+walletAddr+`","value":"1"}`, map[string]string{seedHeader: testSeed})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "0xfeed", decodeError(t, rec).Error.TxHash)
}

func TestInternalErrorIsNotLeaked(t *testing.T) {
	env := newTestEnv(t)
	env.multisig.err = errors.New("secret dsn user:pass@tcp")
	rec := env.do(http.MethodGet, "/multi-sig/"+walletAddr+"/owners", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestWalletReads(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		path string
		want string
	}{
		{"/multi-sig/" + walletAddr + "/owners", `{"owners":["` + ownerAddr + `"]}`},
		{"/multi-sig/" + walletAddr + "/transaction-count", `{"count":"7"}`},
		{"/multi-sig/" + walletAddr + "/future-address", `{"address":"` + ownerAddr + `"}`},
		{"/multi-sig/" + walletAddr + "/balance", `{"balance":"1000"}`},
		{"/multi-sig/" + walletAddr + "/transactions/2", `{"index":"2","to":"` + ownerAddr + `","value":"0","data":"0x","executed":false,"numConfirmations":"1"}`},
		{"/license/" + walletAddr + "/shares/" + ownerAddr, `{"owner":"` + ownerAddr + `","share":"40"}`},
		{"/license/" + walletAddr + "/owners", `{"owners":["` + ownerAddr + `"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := env.do(http.MethodGet, tc.path, "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, tc.want, rec.Body.String())
		})
	}
}

func TestTransactionIndexMustBeNumeric(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/multi-sig/"+walletAddr+"/transactions/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsBlockRange(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/multi-sig/"+walletAddr+"/events?from_block=5&to_block=9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	require.NotNil(t, env.multisig.from)
	require.NotNil(t, env.multisig.to)
	assert.Equal(t, uint64(5), *env.multisig.from)
	assert.Equal(t, uint64(9), *env.multisig.to)

	rec = env.do(http.MethodGet, "/multi-sig/"+walletAddr+"/events?from_block=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLicenseDeploy(t *testing.T) {
	env := newTestEnv(t)
	body := `{"multiSigWallet":"` + walletAddr + `","owners":["` + ownerAddr + `"],"shares":[100],"payrollAddress":"` + ownerAddr + `"}`
	rec := env.do(http.MethodPost, "/license/deploy", body, map[string]string{seedHeader: testSeed})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"address":"`+walletAddr+`"}`, rec.Body.String())
	assert.Equal(t, []uint64{100}, env.license.deployed.Shares)
}

func TestSalaryDeploy(t *testing.T) {
	env := newTestEnv(t)
	body := `{"authorizedWallet":"` + walletAddr + `"}`

	rec := env.do(http.MethodPost, "/salaries/deploy", body, map[string]string{seedHeader: testSeed})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"address":"`+ownerAddr+`"}`, rec.Body.String())
	assert.Equal(t, []string{walletAddr}, env.salary.wallets)

	rec = env.do(http.MethodPost, "/salaries/deploy", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/salaries/deploy", `{"authorizedWallet":"`+testSeed+`"}`, map[string]string{seedHeader: testSeed})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Error.Code)
	assert.Len(t, env.salary.wallets, 1)

	env.salary.err = domain.Upstream("deploy Salaries", errors.New("out of gas"))
	rec = env.do(http.MethodPost, "/salaries/deploy", body, map[string]string{seedHeader: testSeed})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestJournalQuery(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/journal?contract="+walletAddr+"&method=deposit&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, walletAddr, env.journal.filter.Contract)
	assert.Equal(t, "deposit", env.journal.filter.Method)
	assert.Equal(t, 5, env.journal.filter.Limit)

	rec = env.do(http.MethodGet, "/journal?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.journal.err = application.ErrJournalDisabled
	rec = env.do(http.MethodGet, "/journal", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "journal_disabled", decodeError(t, rec).Error.Code)
}

func TestIdempotentReplay(t *testing.T) {
	env := newTestEnv(t)
	body := `{"contractAddress":"` + walletAddr + `","destination":"` + ownerAddr + `","value":"0","data":"0x"}`
	headers := map[string]string{seedHeader: testSeed, idempotencyHeader: "retry-1"}

	first := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	require.Equal(t, http.StatusOK, first.Code)
	second := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Len(t, env.multisig.submits, 1)
	assert.Equal(t, "true", second.Header().Get(replayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(env.server.MetricsObserver().replays))

	other := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, map[string]string{seedHeader: testSeed, idempotencyHeader: "retry-2"})
	require.Equal(t, http.StatusOK, other.Code)
	assert.Len(t, env.multisig.submits, 2)
}

func TestIdempotencyStoresUpstreamFailures(t *testing.T) {
	env := newTestEnv(t)
	env.multisig.err = domain.Upstream("wait for 0x01", errors.New("receipt timeout"))
	body := `{"contractAddress":"` + walletAddr + `"}`
	headers := map[string]string{seedHeader: testSeed, idempotencyHeader: "retry-1"}

	first := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	require.Equal(t, http.StatusBadGateway, first.Code)

	env.multisig.err = nil
	second := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	require.Equal(t, http.StatusBadGateway, second.Code)
	assert.Equal(t, "true", second.Header().Get(replayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, env.multisig.submits, 1)
}

func TestIdempotencyReleasesRejectedRequests(t *testing.T) {
	env := newTestEnv(t)
	headers := map[string]string{seedHeader: testSeed, idempotencyHeader: "retry-1"}

	rec := env.do(http.MethodPost, "/multi-sig/submit-transaction", `{"contractAddress":"nope"}`, headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.store.records)

	body := `{"contractAddress":"` + walletAddr + `"}`
	rec = env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.multisig.submits, 1)
	assert.Len(t, env.store.records, 1)
}

func TestIdempotencyKeepsKeyAfterEventNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.multisig.err = &domain.EventNotFoundError{Event: "SubmitTransaction", TxHash: "0xabc"}
	body := `{"contractAddress":"` + walletAddr + `"}`
	headers := map[string]string{seedHeader: testSeed, idempotencyHeader: "retry-1"}

	require.Equal(t, http.StatusUnprocessableEntity, env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers).Code)
	env.multisig.err = nil
	rec := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, env.multisig.submits, 1)
}

func TestIdempotencyRejectsConcurrentDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.multisig.entered = make(chan struct{})
	env.multisig.release = make(chan struct{})
	body := `{"contractAddress":"` + walletAddr + `","destination":"` + ownerAddr + `","value":"1"}`
	headers := map[string]string{seedHeader: testSeed, idempotencyHeader: "same-key"}

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	}()
	<-env.multisig.entered

	duplicate := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	require.Equal(t, http.StatusConflict, duplicate.Code)
	assert.Equal(t, "request_in_progress", decodeError(t, duplicate).Error.Code)

	close(env.multisig.release)
	first := <-done
	require.Equal(t, http.StatusOK, first.Code)

	retry := env.do(http.MethodPost, "/multi-sig/submit-transaction", body, headers)
	require.Equal(t, http.StatusOK, retry.Code)
	assert.Equal(t, "true", retry.Header().Get(replayedHeader))
	assert.Len(t, env.multisig.submits, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.server.MetricsObserver().OnTransaction("submitTransaction", nil, 1500*time.Millisecond)
	env.server.MetricsObserver().OnTransaction("deploy", errors.New("boom"), time.Second)
	env.do(http.MethodGet, "/healthz", "", nil)

	m := env.server.MetricsObserver()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transactions.WithLabelValues("submitTransaction", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transactions.WithLabelValues("deploy", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/healthz", "200")))

	rec := env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chainapi_chain_transactions_total")
	assert.Contains(t, rec.Body.String(), "chainapi_http_requests_total")
}

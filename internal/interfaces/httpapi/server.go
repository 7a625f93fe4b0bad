package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chainapi/internal/application"
	"chainapi/internal/domain"
	"chainapi/internal/infrastructure/idempotency"
	"chainapi/internal/infrastructure/signer"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type MultiSigService interface {
	Deploy(ctx context.Context, seed string, owners []string, confirmations uint64) (string, error)
	Owners(ctx context.Context, address string) ([]string, error)
	Submit(ctx context.Context, ref domain.WalletRef, req domain.TransactionRequest) (domain.SubmitResult, error)
	Confirm(ctx context.Context, ref domain.WalletRef, index uint64) (domain.ConfirmResult, error)
	Revoke(ctx context.Context, ref domain.WalletRef, index uint64) (domain.ConfirmResult, error)
	Execute(ctx context.Context, ref domain.WalletRef, index uint64, isDeploy bool) (domain.ExecuteResult, error)
	TransactionCount(ctx context.Context, address string) (string, error)
	Transaction(ctx context.Context, address string, index uint64) (domain.WalletTransaction, error)
	Deposit(ctx context.Context, ref domain.WalletRef, value string) (domain.DepositResult, error)
	FutureAddress(ctx context.Context, address string) (string, error)
	Balance(ctx context.Context, address string) (string, error)
	Events(ctx context.Context, address string, fromBlock, toBlock *uint64) ([]domain.ContractEvent, error)
}

type LicenseService interface {
	Deploy(ctx context.Context, seed string, req domain.LicenseDeployment) (string, error)
	Info(ctx context.Context, address string) (domain.LicenseInfo, error)
	Share(ctx context.Context, address, owner string) (string, error)
	Owners(ctx context.Context, address string) ([]string, error)
	Request(ctx context.Context, seed, address, multiSigWallet string) (domain.SubmitResult, error)
}

type SalaryService interface {
	Deploy(ctx context.Context, seed, authorizedWallet string) (string, error)
}

type JournalService interface {
	Query(ctx context.Context, filter application.JournalQueryFilter) ([]domain.JournalEntry, error)
}

type SignerSource interface {
	Signer(seed string) (*signer.Signer, error)
}

type RPCStatus interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
}

// Deps wires the server. Journal, Store and Idempotency are optional.
type Deps struct {
	MultiSig    MultiSigService
	License     LicenseService
	Salary      SalaryService
	Journal     JournalService
	Signers     SignerSource
	RPC         RPCStatus
	Store       Pinger
	Idempotency idempotency.Store
	Metrics     *Metrics
	BuildInfo   BuildInfo
}

type Server struct {
	multisig    MultiSigService
	license     LicenseService
	salary      SalaryService
	journal     JournalService
	signers     SignerSource
	rpc         RPCStatus
	store       Pinger
	idempotency idempotency.Store
	metrics     *Metrics
	buildInfo   BuildInfo
}

func NewServer(deps Deps) (*Server, error) {
	if deps.MultiSig == nil || deps.License == nil || deps.Salary == nil || deps.Signers == nil || deps.RPC == nil {
		return nil, errors.New("http server dependencies must not be nil")
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	return &Server{
		multisig:    deps.MultiSig,
		license:     deps.License,
		salary:      deps.Salary,
		journal:     deps.Journal,
		signers:     deps.Signers,
		rpc:         deps.RPC,
		store:       deps.Store,
		idempotency: deps.Idempotency,
		metrics:     deps.Metrics,
		buildInfo:   deps.BuildInfo,
	}, nil
}

func (s *Server) MetricsObserver() *Metrics {
	return s.metrics
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests)
	r.Use(s.metrics.middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Post("/address-from-seed", s.handleAddressFromSeed)
	r.Get("/journal", s.handleJournal)

	r.Route("/multi-sig", func(r chi.Router) {
		r.Post("/deploy", s.handleDeployWallet)
		r.Group(func(r chi.Router) {
			r.Use(s.idempotent)
			r.Post("/submit-transaction", s.handleSubmit)
			r.Post("/confirm-transaction", s.handleConfirm)
			r.Post("/execute-transaction", s.handleExecute)
			r.Post("/revoke-confirmation", s.handleRevoke)
			r.Post("/deposit", s.handleDeposit)
		})
		r.Route("/{address}", func(r chi.Router) {
			r.Get("/owners", s.handleWalletOwners)
			r.Get("/transaction-count", s.handleTransactionCount)
			r.Get("/transactions/{index}", s.handleTransaction)
			r.Get("/future-address", s.handleFutureAddress)
			r.Get("/balance", s.handleBalance)
			r.Get("/events", s.handleEvents)
		})
	})

	r.Route("/license", func(r chi.Router) {
		r.Post("/deploy", s.handleDeployLicense)
		r.With(s.idempotent).Post("/request", s.handleLicenseRequest)
		r.Route("/{address}", func(r chi.Router) {
			r.Get("/info", s.handleLicenseInfo)
			r.Get("/owners", s.handleLicenseOwners)
			r.Get("/shares/{owner}", s.handleLicenseShare)
		})
	})
	r.Post("/salaries/deploy", s.handleDeploySalary)
	return r
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.rpc.LatestBlockNumber(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "rpc not ready"})
		return
	}
	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "journal not ready"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.buildInfo)
}

// handleAddressFromSeed answers with the bare checksummed address as text.
func (s *Server) handleAddressFromSeed(w http.ResponseWriter, r *http.Request) {
	var req addressFromSeedRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	sg, err := s.signers.Signer(req.SeedPhrase)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sg.Address.Hex()))
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		respondError(w, r, application.ErrJournalDisabled)
		return
	}
	filter, err := parseJournalFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	entries, err := s.journal.Query(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

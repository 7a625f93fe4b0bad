package httpapi

import (
	"net/http"

	"chainapi/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleDeployWallet(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req deployWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	address, err := s.multisig.Deploy(r.Context(), seed, req.Owners, req.Confirmations)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"address": address})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := s.multisig.Submit(r.Context(), domain.WalletRef{Address: req.ContractAddress, Seed: seed}, domain.TransactionRequest{
		Destination: req.Destination,
		Value:       req.Value,
		Data:        req.Data,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req indexRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := s.multisig.Confirm(r.Context(), domain.WalletRef{Address: req.ContractAddress, Seed: seed}, *req.Index)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req indexRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := s.multisig.Revoke(r.Context(), domain.WalletRef{Address: req.ContractAddress, Seed: seed}, *req.Index)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := s.multisig.Execute(r.Context(), domain.WalletRef{Address: req.ContractAddress, Seed: seed}, *req.Index, req.IsDeploy)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := s.multisig.Deposit(r.Context(), domain.WalletRef{Address: req.ContractAddress, Seed: seed}, req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleWalletOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := s.multisig.Owners(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"owners": owners})
}

func (s *Server) handleTransactionCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.multisig.TransactionCount(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"count": count})
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	index, err := parseUintParam(chi.URLParam(r, "index"), "index")
	if err != nil {
		respondError(w, r, err)
		return
	}
	tx, err := s.multisig.Transaction(r.Context(), chi.URLParam(r, "address"), index)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

func (s *Server) handleFutureAddress(w http.ResponseWriter, r *http.Request) {
	address, err := s.multisig.FutureAddress(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"address": address})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.multisig.Balance(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"balance": balance})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseBlockRange(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	events, err := s.multisig.Events(r.Context(), chi.URLParam(r, "address"), from, to)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if events == nil {
		events = []domain.ContractEvent{}
	}
	respondJSON(w, http.StatusOK, events)
}

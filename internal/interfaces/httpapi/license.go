package httpapi

import (
	"net/http"

	"chainapi/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleDeployLicense(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req deployLicenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	address, err := s.license.Deploy(r.Context(), seed, domain.LicenseDeployment{
		MultiSigWallet: req.MultiSigWallet,
		Owners:         req.Owners,
		Shares:         req.Shares,
		PayrollAddress: req.PayrollAddress,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"address": address})
}

func (s *Server) handleLicenseInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.license.Info(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleLicenseOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := s.license.Owners(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"owners": owners})
}

func (s *Server) handleLicenseShare(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	share, err := s.license.Share(r.Context(), chi.URLParam(r, "address"), owner)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"owner": owner, "share": share})
}

// handleLicenseRequest submits a payout request to the license's wallet.
func (s *Server) handleLicenseRequest(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req licenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := s.license.Request(r.Context(), seed, req.ContractAddress, req.MultiSigWallet)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

package httpapi

import "net/http"

// handleDeploySalary deploys the payroll contract a license pays out to.
func (s *Server) handleDeploySalary(w http.ResponseWriter, r *http.Request) {
	seed, err := seedFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req deploySalaryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	address, err := s.salary.Deploy(r.Context(), seed, req.AuthorizedWallet)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"address": address})
}

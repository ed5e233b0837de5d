package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"duit/internal/core"
)

// transactionRequest keeps nominal as raw JSON so clients may send it as
// either a number or a string; both are parsed into an exact decimal.
type transactionRequest struct {
	Nominal     json.RawMessage `json:"nominal"`
	OccurredAt  string          `json:"occurredAt"`
	Direction   string          `json:"direction"`
	Description string          `json:"description"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, r, core.ErrUnauthenticated)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, core.ErrInvalidInput)
		return
	}

	nominal, err := core.ParseNominal(strings.Trim(string(req.Nominal), `"`))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.OccurredAt == "" {
		respondError(w, r, core.ErrMissingDate)
		return
	}
	occurredAt, err := core.ParseOccurredAt(req.OccurredAt)
	if err != nil {
		respondError(w, r, err)
		return
	}

	tx, err := s.ledger.Record(r.Context(), claims.UserID, core.Transaction{
		Nominal:     nominal,
		OccurredAt:  occurredAt,
		Direction:   core.Direction(req.Direction),
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, tx)
}

type transactionsResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Summary      *core.MonthSummary `json:"summary,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, r, core.ErrUnauthenticated)
		return
	}

	yearParam := r.URL.Query().Get("year")
	monthParam := r.URL.Query().Get("month")

	// Unfiltered listing when neither is supplied; both are required
	// for a month query.
	if yearParam == "" && monthParam == "" {
		entries, err := s.ledger.ListForUser(r.Context(), claims.UserID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if entries == nil {
			entries = []core.Transaction{}
		}
		respondData(w, http.StatusOK, transactionsResponse{Transactions: entries})
		return
	}

	if yearParam == "" || monthParam == "" {
		respondError(w, r, fmt.Errorf("%w: year and month must be supplied together", core.ErrInvalidInput))
		return
	}

	year, err := strconv.Atoi(yearParam)
	if err != nil {
		respondError(w, r, core.ErrInvalidYear)
		return
	}
	month, err := strconv.Atoi(monthParam)
	if err != nil {
		respondError(w, r, core.ErrInvalidMonth)
		return
	}

	entries, summary, err := s.ledger.ListForMonth(r.Context(), claims.UserID, year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.Transaction{}
	}

	respondData(w, http.StatusOK, transactionsResponse{Transactions: entries, Summary: &summary})
}

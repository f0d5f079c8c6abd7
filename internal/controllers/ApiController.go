package controllers

import (
	"errors"
	json "github.com/goccy/go-json"
	"net/http"
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/services"
	"rld/internal/structures"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger      providers.Logger
	calculator  services.RewardCalculatorInterface
	gate        services.EngagementGateInterface
	ledger      services.ViolationLedgerInterface
	defaultMode string
}

func NewApiController(conf *structures.Config, logger providers.Logger, calculator services.RewardCalculatorInterface, gate services.EngagementGateInterface, ledger services.ViolationLedgerInterface) *ApiController {
	return &ApiController{
		logger:      logger,
		calculator:  calculator,
		gate:        gate,
		ledger:      ledger,
		defaultMode: conf.Rewards.Mode,
	}
}

type quoteRequest struct {
	Likes   float64 `json:"likes"`
	Reposts float64 `json:"reposts"`
	Mode    string  `json:"mode"`
}

type violationRequest struct {
	Wallet     string   `json:"wallet"`
	Type       string   `json:"type"`
	Types      []string `json:"types"`
	Confidence float64  `json:"confidence"`
}

type statusResponse struct {
	Wallet      string                  `json:"wallet"`
	Restriction models.RestrictionState `json:"restriction"`
	Degraded    bool                    `json:"degraded,omitempty"`
}

type recordResponse struct {
	models.ViolationRecord
	Degraded bool `json:"degraded,omitempty"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func isClientError(err error) bool {
	return errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrInvalidIdentity)
}

func (ac *ApiController) QuoteReward(w http.ResponseWriter, r *http.Request) {
	var payload quoteRequest
	if !decode(w, r, &payload) {
		return
	}
	snap, err := models.SnapshotFromFloat(payload.Likes, payload.Reposts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if payload.Mode == "" {
		payload.Mode = ac.defaultMode
	}
	mode, err := models.ParseRewardMode(payload.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	quote, err := ac.calculator.Compute(snap.Likes, snap.Reposts, mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (ac *ApiController) ReceiveEngagement(w http.ResponseWriter, r *http.Request) {
	var event models.EngagementEvent
	if !decode(w, r, &event) {
		return
	}

	adm, err := ac.gate.Admit(r.Context(), event)
	if err != nil {
		if isClientError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ac.logger.Errorf(providers.TypePost, "engagement %s: %s", event.PostID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	switch adm.Reason {
	case models.RejectRestricted:
		status = http.StatusForbidden
	case models.RejectQuotaExceeded:
		status = http.StatusTooManyRequests
	case models.RejectUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, adm)
}

func (ac *ApiController) ReceiveViolation(w http.ResponseWriter, r *http.Request) {
	var payload violationRequest
	if !decode(w, r, &payload) {
		return
	}
	if err := models.ValidateWallet(payload.Wallet); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	labels := payload.Types
	if payload.Type != "" {
		labels = append(labels, payload.Type)
	}
	if len(labels) == 0 {
		http.Error(w, "violation type is required", http.StatusBadRequest)
		return
	}
	types := make([]models.ViolationType, 0, len(labels))
	for _, label := range labels {
		vt, err := models.ParseViolationType(label)
		if err != nil {
			ac.logger.Warnf(providers.TypePost, "%s: %s", payload.Wallet, err)
		}
		types = append(types, vt)
	}

	outcome, err := ac.ledger.RecordViolation(r.Context(), payload.Wallet, models.HighestPriority(types...), payload.Confidence)
	if err != nil && !errors.Is(err, models.ErrLedgerUnavailable) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (ac *ApiController) GetStatus(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if err := models.ValidateWallet(wallet); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := ac.ledger.GetRestrictionStatus(r.Context(), wallet)
	writeJSON(w, http.StatusOK, statusResponse{
		Wallet:      wallet,
		Restriction: state,
		Degraded:    err != nil,
	})
}

func (ac *ApiController) GetRecord(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if err := models.ValidateWallet(wallet); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := ac.ledger.GetRecord(r.Context(), wallet)
	writeJSON(w, http.StatusOK, recordResponse{ViolationRecord: rec, Degraded: err != nil})
}

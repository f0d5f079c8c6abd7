package controllers

import (
	"net/http"
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/services"
	"time"
)

type AdminController struct {
	logger providers.Logger
	ledger services.ViolationLedgerInterface
}

func NewAdminController(logger providers.Logger, ledger services.ViolationLedgerInterface) *AdminController {
	return &AdminController{logger: logger, ledger: ledger}
}

type blockRequest struct {
	Wallet   string `json:"wallet"`
	Duration string `json:"duration"`
	Reason   string `json:"reason"`
}

type clearRequest struct {
	Wallet string `json:"wallet"`
}

type adminResponse struct {
	Wallet      string                  `json:"wallet"`
	Restriction models.RestrictionState `json:"restriction"`
}

// Block bans a wallet by hand. Duration uses Go syntax ("48h"); empty
// means the default manual block.
func (ac *AdminController) Block(w http.ResponseWriter, r *http.Request) {
	var payload blockRequest
	if !decode(w, r, &payload) {
		return
	}
	if err := models.ValidateWallet(payload.Wallet); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var duration time.Duration
	if payload.Duration != "" {
		d, err := time.ParseDuration(payload.Duration)
		if err != nil || d <= 0 {
			http.Error(w, "invalid duration", http.StatusBadRequest)
			return
		}
		duration = d
	}

	if err := ac.ledger.Block(r.Context(), payload.Wallet, duration, payload.Reason); err != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	ac.respond(w, r, payload.Wallet)
}

func (ac *AdminController) Clear(w http.ResponseWriter, r *http.Request) {
	var payload clearRequest
	if !decode(w, r, &payload) {
		return
	}
	if err := models.ValidateWallet(payload.Wallet); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := ac.ledger.Clear(r.Context(), payload.Wallet); err != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	ac.respond(w, r, payload.Wallet)
}

func (ac *AdminController) respond(w http.ResponseWriter, r *http.Request, wallet string) {
	state, err := ac.ledger.GetRestrictionStatus(r.Context(), wallet)
	if err != nil {
		ac.logger.Warnf(providers.TypePost, "admin read back for %s failed: %s", wallet, err)
	}
	writeJSON(w, http.StatusOK, adminResponse{Wallet: wallet, Restriction: state})
}

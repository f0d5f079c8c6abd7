package controllers

import (
	"fmt"
	"net/http"
	"rld/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminBlock_DefaultDuration(t *testing.T) {
	ledger := &mockLedger{state: models.TemporaryBan(time.Now().Add(7 * 24 * time.Hour))}
	ac := NewAdminController(&mockLogger{}, ledger)

	rr := post(ac.Block, fmt.Sprintf(`{"wallet":%q,"reason":"fraud ring"}`, validWallet))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, ledger.blocks, 1)
	assert.Zero(t, ledger.blocks[0].duration)
	assert.Equal(t, "fraud ring", ledger.blocks[0].reason)
	assert.Contains(t, rr.Body.String(), `"temporary_ban"`)
}

func TestAdminBlock_ParsesDuration(t *testing.T) {
	ledger := &mockLedger{}
	ac := NewAdminController(&mockLogger{}, ledger)

	rr := post(ac.Block, fmt.Sprintf(`{"wallet":%q,"duration":"48h"}`, validWallet))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, ledger.blocks, 1)
	assert.Equal(t, 48*time.Hour, ledger.blocks[0].duration)
}

func TestAdminBlock_BadRequests(t *testing.T) {
	ledger := &mockLedger{}
	ac := NewAdminController(&mockLogger{}, ledger)

	for _, body := range []string{
		`{`,
		`{"wallet":"bogus"}`,
		fmt.Sprintf(`{"wallet":%q,"duration":"forever"}`, validWallet),
		fmt.Sprintf(`{"wallet":%q,"duration":"-1h"}`, validWallet),
	} {
		rr := post(ac.Block, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.Empty(t, ledger.blocks)
}

func TestAdminBlock_LedgerDown(t *testing.T) {
	ledger := &mockLedger{err: models.ErrLedgerUnavailable}
	ac := NewAdminController(&mockLogger{}, ledger)

	rr := post(ac.Block, fmt.Sprintf(`{"wallet":%q}`, validWallet))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAdminClear(t *testing.T) {
	ledger := &mockLedger{state: models.Clear()}
	ac := NewAdminController(&mockLogger{}, ledger)

	rr := post(ac.Clear, fmt.Sprintf(`{"wallet":%q}`, validWallet))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{validWallet}, ledger.clears)
	assert.Contains(t, rr.Body.String(), `"clear"`)
}

func TestAdminClear_InvalidWallet(t *testing.T) {
	ledger := &mockLedger{}
	ac := NewAdminController(&mockLogger{}, ledger)

	rr := post(ac.Clear, `{"wallet":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, ledger.clears)
}

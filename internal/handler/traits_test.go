package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiantools/sbt-sync/internal/client"
	"github.com/xiantools/sbt-sync/internal/model"
	"github.com/xiantools/sbt-sync/traits"
)

type stubCompare struct {
	result *model.ComparisonResult
	err    error
}

func (s *stubCompare) CompareTraits(_ context.Context, _ string) (*model.ComparisonResult, error) {
	return s.result, s.err
}

type stubBridge struct {
	info *client.WalletInfo
	tx   *client.TxResult
}

func (s *stubBridge) RequestWalletInfo(_ context.Context) (*client.WalletInfo, error) {
	return s.info, nil
}

func (s *stubBridge) SendTransaction(_ context.Context, _, _ string, _ map[string]any, _ uint64) (*client.TxResult, error) {
	return s.tx, nil
}

type stubChain struct {
	traits   map[string]any
	err      error
	contract string
	address  string
}

func (s *stubChain) OnChainTraits(_ context.Context, contract, address string) (map[string]any, error) {
	s.contract = contract
	s.address = address
	return s.traits, s.err
}

func newTestHandler(compare *stubCompare, bridge *stubBridge) *TraitHandler {
	return newTestHandlerWithChain(compare, bridge, &stubChain{})
}

func newTestHandlerWithChain(compare *stubCompare, bridge *stubBridge, chain *stubChain) *TraitHandler {
	ctrl := traits.NewController(compare, bridge, traits.Options{
		Contract:     "con_sbtxian",
		UpdateMethod: "update_traits",
		StampLimit:   100,
		TraitKeys:    []string{"Score", "Tier"},
		ChainFields:  map[string]string{"Score": "score", "Tier": "tier"},
		Debounce:     time.Millisecond,
		RecheckDelay: time.Millisecond,
	}, nil)
	return NewTraitHandler(ctrl, client.NewBridgeClient("http://localhost:0"), chain, "con_sbtxian")
}

func TestCompareEndpoint(t *testing.T) {
	h := newTestHandler(&stubCompare{result: &model.ComparisonResult{
		Address:  "addr1",
		OffChain: map[string]any{"Score": 120.0},
		OnChain:  map[string]any{"Score": 100.0},
	}}, &stubBridge{})

	rec := httptest.NewRecorder()
	h.Compare(rec, httptest.NewRequest(http.MethodGet, "/traits/compare?address=addr1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var outcome model.CompareOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	assert.True(t, outcome.ScoreMismatch)
	assert.False(t, outcome.OwnsAddress, "no wallet session connected")
	assert.False(t, outcome.UpdateEnabled)
}

func TestCompareEndpointMissingAddress(t *testing.T) {
	h := newTestHandler(&stubCompare{}, &stubBridge{})

	rec := httptest.NewRecorder()
	h.Compare(rec, httptest.NewRequest(http.MethodGet, "/traits/compare", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.CodeInputMissing, body.Code)
}

func TestCompareEndpointMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubCompare{}, &stubBridge{})

	rec := httptest.NewRecorder()
	h.Compare(rec, httptest.NewRequest(http.MethodPost, "/traits/compare", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChainTraitsEndpoint(t *testing.T) {
	chain := &stubChain{traits: map[string]any{"Score": "120", "Tier": "Bronze"}}
	h := newTestHandlerWithChain(&stubCompare{}, &stubBridge{}, chain)

	rec := httptest.NewRecorder()
	h.ChainTraits(rec, httptest.NewRequest(http.MethodGet, "/traits/chain?address=addr1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body model.ChainTraitsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "addr1", body.Address)
	assert.Equal(t, "120", body.Traits["Score"])
	assert.Equal(t, "con_sbtxian", chain.contract)
	assert.Equal(t, "addr1", chain.address)
}

func TestChainTraitsEndpointSessionFallback(t *testing.T) {
	chain := &stubChain{traits: map[string]any{"Score": "120"}}
	bridge := &stubBridge{info: &client.WalletInfo{Address: "addr1", TruncatedAddress: "addr...1"}}
	h := newTestHandlerWithChain(&stubCompare{}, bridge, chain)

	rec := httptest.NewRecorder()
	h.Connect(rec, httptest.NewRequest(http.MethodPost, "/wallet/connect", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ChainTraits(rec, httptest.NewRequest(http.MethodGet, "/traits/chain", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "addr1", chain.address, "missing address falls back to the connected wallet")
}

func TestChainTraitsEndpointMissingAddress(t *testing.T) {
	h := newTestHandler(&stubCompare{}, &stubBridge{})

	rec := httptest.NewRecorder()
	h.ChainTraits(rec, httptest.NewRequest(http.MethodGet, "/traits/chain", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.CodeInputMissing, body.Code)
}

func TestChainTraitsEndpointQueryFailure(t *testing.T) {
	chain := &stubChain{err: errors.New("node down")}
	h := newTestHandlerWithChain(&stubCompare{}, &stubBridge{}, chain)

	rec := httptest.NewRecorder()
	h.ChainTraits(rec, httptest.NewRequest(http.MethodGet, "/traits/chain?address=addr1", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.CodeAPIFailure, body.Code)
}

func TestUpdateEndpointWithoutComparison(t *testing.T) {
	h := newTestHandler(&stubCompare{}, &stubBridge{})

	rec := httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPost, "/traits/update", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.CodeNoComparison, body.Code)
}

func TestUpdateEndpointOwnershipMismatch(t *testing.T) {
	compare := &stubCompare{result: &model.ComparisonResult{
		Address:  "addr2",
		OffChain: map[string]any{"Score": 120.0},
		OnChain:  map[string]any{"Score": 100.0},
	}}
	bridge := &stubBridge{
		info: &client.WalletInfo{Address: "addr1", TruncatedAddress: "addr...1"},
		tx:   &client.TxResult{Success: true, TxHash: "txhash1"},
	}
	h := newTestHandler(compare, bridge)

	rec := httptest.NewRecorder()
	h.Connect(rec, httptest.NewRequest(http.MethodPost, "/wallet/connect", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Compare(rec, httptest.NewRequest(http.MethodGet, "/traits/compare?address=addr2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPost, "/traits/update", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.CodeOwnershipMismatch, body.Code)
	assert.Contains(t, body.Error, "addr1")
	assert.Contains(t, body.Error, "addr2")
}

func TestStatusEndpoint(t *testing.T) {
	h := newTestHandler(&stubCompare{}, &stubBridge{})

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body model.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.BridgeReady)
	assert.Nil(t, body.Session)
}

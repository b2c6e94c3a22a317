package monitor

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTx builds a wire tx the way Xian nodes deliver them:
// JSON -> hex text -> base64
func encodeTx(t *testing.T, payload TxPayload) string {
	t.Helper()
	raw, err := json.Marshal(decodedTx{Payload: payload})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(raw)))
}

func TestDecodeTx(t *testing.T) {
	wire := encodeTx(t, TxPayload{
		Sender:   "addr1",
		Contract: "currency",
		Function: "transfer",
		Kwargs:   map[string]any{"amount": 12.5, "to": "addr2"},
	})

	payload, err := DecodeTx(wire)
	require.NoError(t, err)
	assert.Equal(t, "addr1", payload.Sender)
	assert.Equal(t, "currency", payload.Contract)
	assert.Equal(t, "transfer", payload.Function)
	assert.Equal(t, 12.5, payload.Kwargs["amount"])
}

func TestDecodeTxBadBase64(t *testing.T) {
	_, err := DecodeTx("!!not-base64!!")
	require.Error(t, err)
}

func TestDecodeTxBadHex(t *testing.T) {
	wire := base64.StdEncoding.EncodeToString([]byte("zz not hex"))
	_, err := DecodeTx(wire)
	require.Error(t, err)
}

func TestDecodeTxBadJSON(t *testing.T) {
	wire := base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString([]byte("not json"))))
	_, err := DecodeTx(wire)
	require.Error(t, err)
}

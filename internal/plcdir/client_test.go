package plcdir

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plchunter/plchunter/pkg/plc"
)

func testOp() *plc.SignedOperation {
	op := &plc.Operation{
		Type:                plc.OpTypeCreate,
		RotationKeys:        []string{"did:key:zUser", "did:key:zWeak"},
		VerificationMethods: map[string]string{},
		AlsoKnownAs:         []string{},
		Services:            map[string]plc.Service{},
	}
	return op.Signed("c2lnbmF0dXJl")
}

func TestSubmit(t *testing.T) {
	const did = "did:plc:aaaaaaaaaaaaaaaaaaaaaaaa"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/"+did, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "c2lnbmF0dXJl", body["sig"])
		assert.Equal(t, plc.OpTypeCreate, body["type"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := New(srv.URL).Submit(context.Background(), did, testOp())
	assert.NoError(t, err)
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "operation is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(srv.URL).Submit(context.Background(), "did:plc:bbbbbbbbbbbbbbbbbbbbbbbb", testOp())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "operation is invalid")
}

func TestNewDefaultsBase(t *testing.T) {
	assert.Equal(t, DefaultDirectory, New("").Base)
}

func TestWebURL(t *testing.T) {
	assert.Equal(t,
		"https://web.plc.directory/did/did:plc:aaaaaaaaaaaaaaaaaaaaaaaa",
		WebURL("did:plc:aaaaaaaaaaaaaaaaaaaaaaaa"))
}

package hcaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		if r.PostForm.Get("response") == "good" {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := &Verifier{Secret: "s3cret", Endpoint: srv.URL, Client: srv.Client()}
	ctx := context.Background()

	assert.NoError(t, v.Verify(ctx, "good", "1.2.3.4"))
	err := v.Verify(ctx, "bad", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid-input-response")
	assert.Error(t, v.Verify(ctx, "", ""))
}

func TestDisabledVerifierAcceptsAll(t *testing.T) {
	v := &Verifier{}
	assert.False(t, v.Enabled())
	assert.NoError(t, v.Verify(context.Background(), "", ""))
}

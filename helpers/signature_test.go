package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event_id":"evt-1","type":"wallet_topup"}`)
	secret := "webhook-secret"

	sig := SignPayload(payload, secret)
	require.True(t, VerifySignature(payload, sig, secret))

	require.False(t, VerifySignature(payload, sig, "other-secret"))
	require.False(t, VerifySignature([]byte(`tampered`), sig, secret))
	require.False(t, VerifySignature(payload, "deadbeef", secret))
	require.False(t, VerifySignature(payload, "", secret))
}

package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSignature(t *testing.T) {
	// Known-answer: HMAC-SHA256 over "orderID|paymentID", hex encoded.
	sig := ComputeSignature([]byte("secret"), "order_abc", "pay_xyz")
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, ComputeSignature([]byte("secret"), "order_abc", "pay_xyz"))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("test_key_secret")
	sig := ComputeSignature(secret, "order_1", "pay_1")

	assert.True(t, VerifySignature(secret, "order_1", "pay_1", sig))

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, VerifySignature([]byte("other"), "order_1", "pay_1", sig))
	})
	t.Run("wrong order", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, "order_2", "pay_1", sig))
	})
	t.Run("wrong payment", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, "order_1", "pay_2", sig))
	})
	t.Run("tampered signature", func(t *testing.T) {
		tampered := "0" + sig[1:]
		if tampered == sig {
			tampered = "1" + sig[1:]
		}
		assert.False(t, VerifySignature(secret, "order_1", "pay_1", tampered))
	})
	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, "order_1", "pay_1", ""))
	})
}

package auth

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverWalletAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	wallet := crypto.PubkeyToAddress(key.PublicKey)

	message := NonceMessage("a1b2c3d4")

	sign := func(msg string) []byte {
		sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
		require.NoError(t, err)
		return sig
	}

	t.Run("Recovers the signing wallet", func(t *testing.T) {
		recovered, err := RecoverWalletAddress(message, hexutil.Encode(sign(message)))
		require.NoError(t, err)
		assert.Equal(t, wallet, recovered)
	})

	t.Run("Handles the eth_sign 27 offset", func(t *testing.T) {
		sig := sign(message)
		sig[crypto.RecoveryIDOffset] += 27
		recovered, err := RecoverWalletAddress(message, hexutil.Encode(sig))
		require.NoError(t, err)
		assert.Equal(t, wallet, recovered)
	})

	t.Run("Different message recovers a different address", func(t *testing.T) {
		recovered, err := RecoverWalletAddress(NonceMessage("other"), hexutil.Encode(sign(message)))
		require.NoError(t, err)
		assert.NotEqual(t, wallet, recovered)
	})

	t.Run("Rejects invalid hex", func(t *testing.T) {
		_, err := RecoverWalletAddress(message, "not-hex")
		assert.Error(t, err)
	})

	t.Run("Rejects short signature", func(t *testing.T) {
		_, err := RecoverWalletAddress(message, "0x0102")
		assert.Error(t, err)
	})
}

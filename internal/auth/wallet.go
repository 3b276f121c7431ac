package auth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// NonceMessage builds the human-readable challenge an institute wallet signs
// during login. The nonce is single-use.
func NonceMessage(nonce string) string {
	return fmt.Sprintf("CertLedger login request.\nNonce: %s", nonce)
}

// RecoverWalletAddress recovers the address that produced a personal_sign
// signature over message. The signature is the 65-byte hex string returned by
// wallet providers; the recovery id may be offset by 27 per the eth_sign
// convention.
func RecoverWalletAddress(message, signatureHex string) (common.Address, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

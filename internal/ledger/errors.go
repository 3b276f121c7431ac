package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the distinct failure classes an issuance must surface.
// They are matched with errors.Is at the operation boundary and mapped to
// short user-facing messages there; raw node errors are only logged.
var (
	// ErrNoSigner means no signing capability is configured. Recoverable by
	// configuring a ledger signing key, not by retrying.
	ErrNoSigner = errors.New("no ledger signing capability configured")

	// ErrDeclined means the signer refused to sign the transaction. Treated
	// as a normal cancellation, not a system fault.
	ErrDeclined = errors.New("transaction declined by signer")

	// ErrInsufficientFunds means the signing account cannot pay gas.
	ErrInsufficientFunds = errors.New("insufficient funds for transaction fees")

	// ErrDuplicateCertificate means at least one fingerprint in the batch is
	// already recorded; the contract rejects the entire batch atomically.
	ErrDuplicateCertificate = errors.New("certificate already issued on ledger")

	// ErrNotApproved means the signing account is not an approved issuer.
	ErrNotApproved = errors.New("issuer not approved on ledger")

	// ErrReverted covers any other contract revert.
	ErrReverted = errors.New("ledger rejected the batch")
)

// classify maps a raw node or contract error onto one of the sentinel error
// classes, keeping the original error in the chain. Revert reasons and node
// rejections arrive as strings, the same triage the issuing UI performs.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied"):
		return fmt.Errorf("%w: %w", ErrDeclined, err)
	case strings.Contains(msg, "insufficient funds"):
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	case strings.Contains(msg, "certificate already issued"):
		return fmt.Errorf("%w: %w", ErrDuplicateCertificate, err)
	case strings.Contains(msg, "not an approved issuer") || strings.Contains(msg, "not approved"):
		return fmt.Errorf("%w: %w", ErrNotApproved, err)
	case strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert"):
		return fmt.Errorf("%w: %w", ErrReverted, err)
	default:
		return err
	}
}

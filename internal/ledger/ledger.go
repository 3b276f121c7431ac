// Package ledger provides the on-chain capability used to durably record
// certificate fingerprints. The contract accepts parallel arrays of digests
// and opaque metadata strings in a single atomic batch; if any digest in the
// batch is already recorded the whole batch reverts.
package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger is the contract capability consumed by the issuance and
// verification operations. Implementations are expected to block until the
// batch is confirmed; a broadcast transaction cannot be withdrawn, so an
// abandoned wait does not mean the transaction did not happen.
type Ledger interface {
	// StoreCertificateHashes submits fingerprints and per-record metadata as
	// one atomic batch and waits for confirmation. Index i of hashes
	// corresponds to index i of metadata. Returns the transaction hash.
	StoreCertificateHashes(ctx context.Context, hashes []common.Hash, metadata []string) (string, error)

	// VerifyFingerprint reports whether a fingerprint is recorded, returning
	// the metadata stored at issuance time when it is.
	VerifyFingerprint(ctx context.Context, hash common.Hash) (bool, string, error)

	// IsApprovedIssuer reports whether the address is approved to issue.
	IsApprovedIssuer(ctx context.Context, address common.Address) (bool, error)
}

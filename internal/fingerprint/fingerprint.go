// Package fingerprint implements the deterministic certificate fingerprint
// protocol used for on-chain storage and verification lookup. A certificate
// record is canonicalized into a single string (fixed field order, lower-cased,
// concatenated with no separator) and hashed with keccak-256. Issuance and
// verification must use the identical rule or verification fails permanently
// for every certificate hashed under the mismatched rule, so the field order
// and fold are fixed per protocol version and never inferred from whatever
// shape happens to be in memory.
package fingerprint

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Version identifies the canonicalization rule in effect. Changing the field
// set or order requires a new version and re-issuance of existing
// certificates; old and new digests are permanently incompatible.
const Version = 1

// Record holds the certificate fields covered by the fingerprint protocol.
// Department is stored and displayed but is not part of the V1 hash.
type Record struct {
	CertificateNo  string `json:"certificateNo" binding:"required"`
	DateOfIssue    string `json:"dateofIssue" binding:"required"`
	Name           string `json:"name" binding:"required"`
	EnrolmentNo    string `json:"enrolmentNo" binding:"required"`
	GraduationYear string `json:"graduationYear" binding:"required"`
	Degree         string `json:"degree" binding:"required"`
	Department     string `json:"department,omitempty"`
}

// Validate checks that every hashed field is non-empty. Empty fields are a
// user input error and must be rejected before any ledger call.
func (r Record) Validate() error {
	for _, f := range []struct {
		name, value string
	}{
		{"certificateNo", r.CertificateNo},
		{"dateofIssue", r.DateOfIssue},
		{"name", r.Name},
		{"enrolmentNo", r.EnrolmentNo},
		{"graduationYear", r.GraduationYear},
		{"degree", r.Degree},
	} {
		if f.value == "" {
			return fmt.Errorf("missing required field: %s", f.name)
		}
	}
	return nil
}

// Canonicalize produces the V1 canonical string: each field lower-cased and
// concatenated with no separator, in the order certificateNo, dateofIssue,
// name, enrolmentNo, graduationYear, degree. Whitespace is preserved as-is;
// a trailing space is a different certificate.
func Canonicalize(r Record) string {
	var b strings.Builder
	for _, field := range []string{
		r.CertificateNo,
		r.DateOfIssue,
		r.Name,
		r.EnrolmentNo,
		r.GraduationYear,
		r.Degree,
	} {
		b.WriteString(strings.ToLower(field))
	}
	return b.String()
}

// Compute returns the keccak-256 digest of the canonical string. It is a pure
// function: equal records (under the V1 order and case fold) always produce
// equal digests, and it is safe for concurrent use.
func Compute(r Record) common.Hash {
	return crypto.Keccak256Hash([]byte(Canonicalize(r)))
}

// ComputeBatch fingerprints records preserving input order: digest i
// corresponds to record i.
func ComputeBatch(records []Record) []common.Hash {
	hashes := make([]common.Hash, len(records))
	for i, r := range records {
		hashes[i] = Compute(r)
	}
	return hashes
}

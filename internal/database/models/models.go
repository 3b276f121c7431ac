// Package models defines the data structures for database entities in
// certledger. It includes models for institutes, issued certificates, wallet
// login nonces, and system configuration.
package models

import (
	"database/sql"
	"time"
)

// Institute represents an issuing institution account
type Institute struct {
	ID              string         `db:"id"`
	Email           string         `db:"email"`
	PasswordHash    string         `db:"password_hash"`
	Name            string         `db:"name"`
	Code            string         `db:"code"`
	WalletAddress   sql.NullString `db:"wallet_address"`
	PostalAddress   sql.NullString `db:"postal_address"`
	ProfileComplete bool           `db:"profile_complete"`
	Role            string         `db:"role"`
	CreatedAt       time.Time      `db:"created_at"`
}

// Certificate represents an issued certificate record. The fingerprint is the
// keccak-256 digest of the canonicalized fields and is the sole verification
// lookup key; the remaining columns are the descriptive copy persisted after
// ledger confirmation.
type Certificate struct {
	ID              string         `db:"id" json:"id"`
	InstituteID     string         `db:"institute_id" json:"institute_id"`
	CertificateNo   string         `db:"certificate_no" json:"certificateNo"`
	DateOfIssue     string         `db:"date_of_issue" json:"dateofIssue"`
	StudentName     string         `db:"student_name" json:"name"`
	EnrolmentNo     string         `db:"enrolment_no" json:"enrolmentNo"`
	GraduationYear  string         `db:"graduation_year" json:"graduationYear"`
	Degree          string         `db:"degree" json:"degree"`
	Department      sql.NullString `db:"department" json:"-"`
	Fingerprint     string         `db:"fingerprint" json:"fingerprint"`
	Metadata        string         `db:"metadata" json:"metadata"`
	TransactionHash string         `db:"transaction_hash" json:"transactionHash"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// WalletNonce represents a pending wallet login challenge
type WalletNonce struct {
	WalletAddress string    `db:"wallet_address"`
	Nonce         string    `db:"nonce"`
	CreatedAt     time.Time `db:"created_at"`
}

// SystemConfig represents system-wide configuration stored in the database
type SystemConfig struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Package database provides database connection management, migrations, and
// data access methods for the certledger application.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/educhainx/certledger/internal/config"
	"github.com/educhainx/certledger/internal/database/models"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Database represents the database connection and operations
type Database struct {
	db     *sql.DB
	dbType string
}

// New creates a new database connection
func New(cfg *config.Config) (*Database, error) {
	var db *sql.DB
	var err error

	switch cfg.Database.Type {
	case "sqlite":
		db, err = sql.Open("sqlite3", cfg.Database.SQLite.Path+"?_foreign_keys=on")
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		// SQLite only allows one writer at a time
		db.SetMaxOpenConns(1)
	case "postgres":
		db, err = sql.Open("postgres", cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.Postgres.MaxIdleConns)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		db:     db,
		dbType: cfg.Database.Type,
	}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Migrate runs database migrations
func (d *Database) Migrate() error {
	var migrationFiles []string
	if d.dbType == "postgres" {
		migrationFiles = []string{
			"migrations/000001_init_schema.postgres.up.sql",
			"migrations/000002_add_department.postgres.up.sql",
		}
	} else {
		migrationFiles = []string{
			"migrations/000001_init_schema.up.sql",
			"migrations/000002_add_department.up.sql",
		}
	}

	for _, migrationFile := range migrationFiles {
		content, err := migrationsFS.ReadFile(migrationFile)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", migrationFile, err)
		}

		// Remove comments and split into statements
		var statements []string
		var currentStmt strings.Builder
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "--") || line == "" {
				continue
			}

			currentStmt.WriteString(line)
			currentStmt.WriteString("\n")

			if strings.HasSuffix(line, ";") {
				stmt := strings.TrimSpace(currentStmt.String())
				if stmt != "" {
					statements = append(statements, stmt)
				}
				currentStmt.Reset()
			}
		}

		for _, stmt := range statements {
			if _, err := d.db.Exec(stmt); err != nil {
				// Ignore "duplicate column" errors for idempotent migrations
				if !strings.Contains(err.Error(), "duplicate column") && !strings.Contains(err.Error(), "already exists") {
					return fmt.Errorf("migration %s failed: %w\nStatement: %s", migrationFile, err, stmt)
				}
			}
		}
	}

	return nil
}

// DB returns the underlying database connection for direct queries
func (d *Database) DB() *sql.DB {
	return d.db
}

// Institute operations

// CreateInstitute creates a new institute account
func (d *Database) CreateInstitute(inst *models.Institute) error {
	query := `INSERT INTO institutes
	          (id, email, password_hash, name, code, wallet_address, postal_address, profile_complete, role, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if d.dbType == "postgres" {
		query = `INSERT INTO institutes
		         (id, email, password_hash, name, code, wallet_address, postal_address, profile_complete, role, created_at)
		         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	}

	_, err := d.db.Exec(query,
		inst.ID, inst.Email, inst.PasswordHash, inst.Name, inst.Code,
		inst.WalletAddress, inst.PostalAddress, inst.ProfileComplete, inst.Role, inst.CreatedAt,
	)
	return err
}

const instituteColumns = `id, email, password_hash, name, code, wallet_address, postal_address, profile_complete, role, created_at`

func (d *Database) scanInstitute(row *sql.Row) (*models.Institute, error) {
	var inst models.Institute
	err := row.Scan(
		&inst.ID, &inst.Email, &inst.PasswordHash, &inst.Name, &inst.Code,
		&inst.WalletAddress, &inst.PostalAddress, &inst.ProfileComplete, &inst.Role, &inst.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// GetInstituteByEmail retrieves an institute by login email
func (d *Database) GetInstituteByEmail(email string) (*models.Institute, error) {
	query := `SELECT ` + instituteColumns + ` FROM institutes WHERE email = ?`
	if d.dbType == "postgres" {
		query = `SELECT ` + instituteColumns + ` FROM institutes WHERE email = $1`
	}
	return d.scanInstitute(d.db.QueryRow(query, email))
}

// GetInstituteByID retrieves an institute by ID
func (d *Database) GetInstituteByID(id string) (*models.Institute, error) {
	query := `SELECT ` + instituteColumns + ` FROM institutes WHERE id = ?`
	if d.dbType == "postgres" {
		query = `SELECT ` + instituteColumns + ` FROM institutes WHERE id = $1`
	}
	return d.scanInstitute(d.db.QueryRow(query, id))
}

// GetInstituteByWallet retrieves an institute by its registered wallet address
func (d *Database) GetInstituteByWallet(walletAddress string) (*models.Institute, error) {
	query := `SELECT ` + instituteColumns + ` FROM institutes WHERE wallet_address = ?`
	if d.dbType == "postgres" {
		query = `SELECT ` + instituteColumns + ` FROM institutes WHERE wallet_address = $1`
	}
	return d.scanInstitute(d.db.QueryRow(query, walletAddress))
}

// UpdateInstituteProfile updates the profile fields of an institute
func (d *Database) UpdateInstituteProfile(inst *models.Institute) error {
	query := `UPDATE institutes
	          SET name = ?, code = ?, wallet_address = ?, postal_address = ?, profile_complete = ?
	          WHERE id = ?`
	if d.dbType == "postgres" {
		query = `UPDATE institutes
		         SET name = $1, code = $2, wallet_address = $3, postal_address = $4, profile_complete = $5
		         WHERE id = $6`
	}

	result, err := d.db.Exec(query,
		inst.Name, inst.Code, inst.WalletAddress, inst.PostalAddress, inst.ProfileComplete, inst.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Certificate operations

const certificateColumns = `id, institute_id, certificate_no, date_of_issue, student_name, enrolment_no,
	graduation_year, degree, department, fingerprint, metadata, transaction_hash, created_at`

// CreateCertificates persists a batch of certificates in a single
// transaction. Either every row is written or none are; index i of the batch
// corresponds to index i of the fingerprints sent to the ledger.
func (d *Database) CreateCertificates(certs []*models.Certificate) error {
	query := `INSERT INTO certificates
	          (id, institute_id, certificate_no, date_of_issue, student_name, enrolment_no,
	           graduation_year, degree, department, fingerprint, metadata, transaction_hash, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if d.dbType == "postgres" {
		query = `INSERT INTO certificates
		         (id, institute_id, certificate_no, date_of_issue, student_name, enrolment_no,
		          graduation_year, degree, department, fingerprint, metadata, transaction_hash, created_at)
		         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, cert := range certs {
		_, err := tx.Exec(query,
			cert.ID, cert.InstituteID, cert.CertificateNo, cert.DateOfIssue, cert.StudentName,
			cert.EnrolmentNo, cert.GraduationYear, cert.Degree, cert.Department,
			cert.Fingerprint, cert.Metadata, cert.TransactionHash, cert.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanCertificate(scan func(dest ...any) error) (*models.Certificate, error) {
	var cert models.Certificate
	err := scan(
		&cert.ID, &cert.InstituteID, &cert.CertificateNo, &cert.DateOfIssue, &cert.StudentName,
		&cert.EnrolmentNo, &cert.GraduationYear, &cert.Degree, &cert.Department,
		&cert.Fingerprint, &cert.Metadata, &cert.TransactionHash, &cert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// GetCertificateByFingerprint retrieves a certificate by its fingerprint,
// the verification lookup path.
func (d *Database) GetCertificateByFingerprint(fingerprint string) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE fingerprint = ?`
	if d.dbType == "postgres" {
		query = `SELECT ` + certificateColumns + ` FROM certificates WHERE fingerprint = $1`
	}
	return scanCertificate(d.db.QueryRow(query, fingerprint).Scan)
}

// ListCertificatesByInstitute retrieves all certificates issued by an institute
func (d *Database) ListCertificatesByInstitute(instituteID string) ([]*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE institute_id = ? ORDER BY created_at DESC`
	if d.dbType == "postgres" {
		query = `SELECT ` + certificateColumns + ` FROM certificates WHERE institute_id = $1 ORDER BY created_at DESC`
	}

	rows, err := d.db.Query(query, instituteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certificates []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows.Scan)
		if err != nil {
			return nil, err
		}
		certificates = append(certificates, cert)
	}

	return certificates, rows.Err()
}

// Wallet nonce operations

// UpsertWalletNonce stores a login challenge for a wallet, replacing any
// previous one.
func (d *Database) UpsertWalletNonce(walletAddress, nonce string) error {
	query := `INSERT OR REPLACE INTO wallet_nonces (wallet_address, nonce, created_at) VALUES (?, ?, ?)`
	if d.dbType == "postgres" {
		query = `INSERT INTO wallet_nonces (wallet_address, nonce, created_at)
		         VALUES ($1, $2, $3)
		         ON CONFLICT (wallet_address) DO UPDATE SET nonce = $2, created_at = $3`
	}

	_, err := d.db.Exec(query, walletAddress, nonce, time.Now())
	return err
}

// GetWalletNonce retrieves the pending login challenge for a wallet
func (d *Database) GetWalletNonce(walletAddress string) (*models.WalletNonce, error) {
	query := `SELECT wallet_address, nonce, created_at FROM wallet_nonces WHERE wallet_address = ?`
	if d.dbType == "postgres" {
		query = `SELECT wallet_address, nonce, created_at FROM wallet_nonces WHERE wallet_address = $1`
	}

	var wn models.WalletNonce
	err := d.db.QueryRow(query, walletAddress).Scan(&wn.WalletAddress, &wn.Nonce, &wn.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &wn, nil
}

// DeleteWalletNonce removes a consumed login challenge
func (d *Database) DeleteWalletNonce(walletAddress string) error {
	query := `DELETE FROM wallet_nonces WHERE wallet_address = ?`
	if d.dbType == "postgres" {
		query = `DELETE FROM wallet_nonces WHERE wallet_address = $1`
	}

	_, err := d.db.Exec(query, walletAddress)
	return err
}

// System config operations

// SetSystemConfig sets a system configuration value
func (d *Database) SetSystemConfig(key, value string) error {
	query := `INSERT OR REPLACE INTO system_config (key, value, updated_at) VALUES (?, ?, ?)`
	if d.dbType == "postgres" {
		query = `INSERT INTO system_config (key, value, updated_at)
		         VALUES ($1, $2, $3)
		         ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3`
	}

	_, err := d.db.Exec(query, key, value, time.Now())
	return err
}

// GetSystemConfig retrieves a system configuration value
func (d *Database) GetSystemConfig(key string) (string, error) {
	query := `SELECT value FROM system_config WHERE key = ?`
	if d.dbType == "postgres" {
		query = `SELECT value FROM system_config WHERE key = $1`
	}

	var value string
	err := d.db.QueryRow(query, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// IsSetupComplete checks if initial setup has been completed
func (d *Database) IsSetupComplete() (bool, error) {
	query := `SELECT COUNT(*) FROM institutes`
	var count int
	err := d.db.QueryRow(query).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

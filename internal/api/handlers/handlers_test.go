package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educhainx/certledger/internal/config"
	"github.com/educhainx/certledger/internal/database"
	"github.com/educhainx/certledger/internal/service"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) StoreCertificateHashes(ctx context.Context, hashes []common.Hash, metadata []string) (string, error) {
	args := m.Called(ctx, hashes, metadata)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) VerifyFingerprint(ctx context.Context, hash common.Hash) (bool, string, error) {
	args := m.Called(ctx, hash)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *mockLedger) IsApprovedIssuer(ctx context.Context, address common.Address) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-for-handlers",
			Expiration: time.Hour,
			Issuer:     "certledger-test",
		},
	}
}

func testDB(t *testing.T) *database.Database {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: "sqlite",
			SQLite: config.SQLiteConfig{
				Path: t.TempDir() + "/test.db",
			},
		},
	}

	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db
}

// setupCompleted creates a DB with the admin institute already provisioned
func setupCompleted(t *testing.T, db *database.Database, cfg *config.Config) *service.SetupResponse {
	t.Helper()
	institutes := service.NewInstituteService(db, cfg, nil)
	resp, err := institutes.PerformInitialSetup(&service.SetupRequest{
		Email:         "registrar@nit.edu",
		Password:      "SecureP@ssw0rd123",
		InstituteName: "National Institute of Technology",
		InstituteCode: "NIT-042",
	})
	require.NoError(t, err)
	return resp
}

// authedContext registers a route whose context carries the issuer identity
// the auth middleware would normally set
func authedContext(issuer service.Issuer) func(c *gin.Context) {
	return func(c *gin.Context) {
		c.Set("institute_id", issuer.ID)
		c.Set("institute_name", issuer.Name)
		c.Set("institute_code", issuer.Code)
		c.Set("institute_email", issuer.Email)
		c.Next()
	}
}

func jsonRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonDecode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

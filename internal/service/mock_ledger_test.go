package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
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

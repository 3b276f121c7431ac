package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// certificateRegistryABI is the interface of the deployed certificate
// registry contract. storeCertificateHashes takes parallel arrays: index i of
// certHashes corresponds to index i of metadataList.
const certificateRegistryABI = `[
	{"type":"function","name":"storeCertificateHashes","stateMutability":"nonpayable","inputs":[{"name":"certHashes","type":"bytes32[]"},{"name":"metadataList","type":"string[]"}],"outputs":[]},
	{"type":"function","name":"verifyCertificate","stateMutability":"view","inputs":[{"name":"certHash","type":"bytes32"}],"outputs":[{"name":"exists","type":"bool"},{"name":"metadata","type":"string"}]},
	{"type":"function","name":"isApprovedIssuer","stateMutability":"view","inputs":[{"name":"issuer","type":"address"}],"outputs":[{"name":"","type":"bool"}]}
]`

// Client talks to the certificate registry contract over an Ethereum node.
type Client struct {
	conn           *ethclient.Client
	contract       *bind.BoundContract
	chainID        *big.Int
	key            *ecdsa.PrivateKey
	from           common.Address
	confirmTimeout time.Duration
}

// ClientConfig holds the connection parameters for the registry contract.
type ClientConfig struct {
	RPCURL          string
	ContractAddress string
	ChainID         int64
	ConfirmTimeout  time.Duration
}

// NewClient dials the node and binds the registry contract. signingKey may be
// nil for a read-only client; issuance then fails with ErrNoSigner.
func NewClient(cfg ClientConfig, signingKey *ecdsa.PrivateKey) (*Client, error) {
	conn, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ledger node: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(certificateRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(address, parsed, conn, conn, conn)

	c := &Client{
		conn:           conn,
		contract:       contract,
		chainID:        big.NewInt(cfg.ChainID),
		key:            signingKey,
		confirmTimeout: cfg.ConfirmTimeout,
	}
	if signingKey != nil {
		c.from = crypto.PubkeyToAddress(signingKey.PublicKey)
	}
	return c, nil
}

// Close releases the node connection.
func (c *Client) Close() {
	c.conn.Close()
}

// SignerAddress returns the issuing account address, or the zero address for
// a read-only client.
func (c *Client) SignerAddress() common.Address {
	return c.from
}

// StoreCertificateHashes submits the batch and blocks until the transaction
// is mined. The transaction hash is returned even when confirmation fails:
// once broadcast it cannot be withdrawn, and the caller must not assume an
// abandoned wait means the batch was not recorded.
func (c *Client) StoreCertificateHashes(ctx context.Context, hashes []common.Hash, metadata []string) (string, error) {
	if c.key == nil {
		return "", ErrNoSigner
	}
	if len(hashes) != len(metadata) {
		return "", fmt.Errorf("fingerprint/metadata length mismatch: %d != %d", len(hashes), len(metadata))
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return "", fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	certHashes := make([][32]byte, len(hashes))
	for i, h := range hashes {
		certHashes[i] = h
	}

	tx, err := c.contract.Transact(opts, "storeCertificateHashes", certHashes, metadata)
	if err != nil {
		return "", classify(err)
	}

	waitCtx := ctx
	if c.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(waitCtx, c.conn, tx)
	if err != nil {
		return tx.Hash().Hex(), fmt.Errorf("waiting for confirmation of %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash().Hex(), fmt.Errorf("%w: transaction %s reverted", ErrReverted, tx.Hash().Hex())
	}

	return tx.Hash().Hex(), nil
}

// VerifyFingerprint performs a read-only registry lookup.
func (c *Client) VerifyFingerprint(ctx context.Context, hash common.Hash) (bool, string, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "verifyCertificate", [32]byte(hash))
	if err != nil {
		return false, "", fmt.Errorf("registry lookup failed: %w", err)
	}
	exists, ok := out[0].(bool)
	if !ok {
		return false, "", fmt.Errorf("unexpected registry response for %s", hash.Hex())
	}
	metadata, _ := out[1].(string)
	return exists, metadata, nil
}

// IsApprovedIssuer reads the issuer-approval flag for an address.
func (c *Client) IsApprovedIssuer(ctx context.Context, address common.Address) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "isApprovedIssuer", address)
	if err != nil {
		return false, fmt.Errorf("issuer approval lookup failed: %w", err)
	}
	approved, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected registry response for %s", address.Hex())
	}
	return approved, nil
}

package onchain

// client.go — escrituras reales contra el contrato de patrocinios en Sepolia.
//
// Todas las escrituras siguen el mismo camino:
//   pack calldata → nonce → gas price (cacheado) → estimate gas (+20%) → sign EIP-155 → send → receipt
//
// Firma siempre la clave configurada. `from` (la wallet del usuario) solo se registra
// en el receipt: no hay custodia de claves de usuario.

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/alejandrodnm/lockload/internal/domain"
)

const (
	// SepoliaChainID es la red de pruebas donde vive el contrato.
	SepoliaChainID = int64(11155111)

	// Gas limit conservador si falla la estimación
	defaultGasLimit = uint64(500_000)

	gasPriceUpdateInterval = 5 * time.Minute
	receiptTimeout         = 60 * time.Second
	receiptPollInterval    = 3 * time.Second
)

// ContractClient implementa ports.SponsorshipContract contra un nodo RPC.
type ContractClient struct {
	client   *ethclient.Client
	key      *ecdsa.PrivateKey
	address  common.Address
	contract common.Address
	chainID  *big.Int

	mu           sync.RWMutex
	cachedGasWei *big.Int
	gasUpdatedAt time.Time
}

// NewContractClient conecta con el RPC y prepara la clave de firma.
// privateKeyHex acepta el prefijo 0x.
func NewContractClient(rpcURL, privateKeyHex, contractAddress string, chainID int64) (*ContractClient, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("onchain: invalid contract address %q", contractAddress)
	}

	pkBytes, err := hex.DecodeString(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("onchain: decode private key: %w", err)
	}
	key, err := crypto.ToECDSA(pkBytes)
	if err != nil {
		return nil, fmt.Errorf("onchain: invalid private key: %w", err)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("onchain: dial rpc %s: %w", rpcURL, err)
	}

	if chainID == 0 {
		chainID = SepoliaChainID
	}

	return &ContractClient{
		client:   client,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		contract: common.HexToAddress(contractAddress),
		chainID:  big.NewInt(chainID),
	}, nil
}

// Close cierra la conexión RPC.
func (cc *ContractClient) Close() {
	cc.client.Close()
}

// CreateSponsorshipDeal envía createSponsorshipDeal.
func (cc *ContractClient) CreateSponsorshipDeal(ctx context.Context, from string, call domain.CreateDealCall) (domain.TxReceipt, error) {
	data, err := PackCreateDeal(call)
	if err != nil {
		return domain.TxReceipt{}, err
	}
	return cc.send(ctx, domain.OpCreateDeal, from, data)
}

// SubmitBid envía submitBid.
func (cc *ContractClient) SubmitBid(ctx context.Context, from string, call domain.SubmitBidCall) (domain.TxReceipt, error) {
	data, err := PackSubmitBid(call)
	if err != nil {
		return domain.TxReceipt{}, err
	}
	return cc.send(ctx, domain.OpSubmitBid, from, data)
}

// AcceptDeal envía acceptDeal.
func (cc *ContractClient) AcceptDeal(ctx context.Context, from string, call domain.AcceptDealCall) (domain.TxReceipt, error) {
	data, err := PackAcceptDeal(call)
	if err != nil {
		return domain.TxReceipt{}, err
	}
	return cc.send(ctx, domain.OpAcceptDeal, from, data)
}

// ReportPerformance envía reportPerformance.
func (cc *ContractClient) ReportPerformance(ctx context.Context, from string, call domain.ReportPerformanceCall) (domain.TxReceipt, error) {
	data, err := PackReportPerformance(call)
	if err != nil {
		return domain.TxReceipt{}, err
	}
	return cc.send(ctx, domain.OpReportPerformance, from, data)
}

// GetDealInfo lee getDealInfo con eth_call.
func (cc *ContractClient) GetDealInfo(ctx context.Context, dealID int64) (domain.ChainDealInfo, error) {
	data, err := PackGetDealInfo(dealID)
	if err != nil {
		return domain.ChainDealInfo{}, err
	}
	out, err := cc.client.CallContract(ctx, ethereum.CallMsg{
		To:   &cc.contract,
		Data: data,
	}, nil)
	if err != nil {
		return domain.ChainDealInfo{}, fmt.Errorf("onchain.GetDealInfo %d: call: %w", dealID, err)
	}
	return DecodeDealInfo(dealID, out)
}

// send firma y envía una transacción con la calldata dada y espera el receipt.
func (cc *ContractClient) send(ctx context.Context, op domain.Operation, from string, data []byte) (domain.TxReceipt, error) {
	receipt := domain.TxReceipt{
		Method: op,
		From:   from,
		SentAt: time.Now().UTC(),
	}

	nonce, err := cc.client.PendingNonceAt(ctx, cc.address)
	if err != nil {
		return receipt, fmt.Errorf("onchain.%s: nonce: %w", op, err)
	}

	gasPrice, err := cc.getGasPrice(ctx)
	if err != nil {
		return receipt, fmt.Errorf("onchain.%s: gas price: %w", op, err)
	}

	gasLimit, err := cc.client.EstimateGas(ctx, ethereum.CallMsg{
		From:     cc.address,
		To:       &cc.contract,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		gasLimit = defaultGasLimit
		slog.Warn("onchain: gas estimate failed, using default", "method", op, "err", err, "limit", defaultGasLimit)
	}
	// +20% de margen
	gasLimit = gasLimit * 12 / 10

	tx := types.NewTransaction(nonce, cc.contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(cc.chainID), cc.key)
	if err != nil {
		return receipt, fmt.Errorf("onchain.%s: sign tx: %w", op, err)
	}

	if err := cc.client.SendTransaction(ctx, signed); err != nil {
		return receipt, fmt.Errorf("onchain.%s: send tx: %w", op, err)
	}
	receipt.TxHash = signed.Hash().Hex()
	slog.Info("onchain: transaction sent", "method", op, "tx", receipt.TxHash, "from", from)

	receiptCtx, cancel := context.WithTimeout(ctx, receiptTimeout)
	defer cancel()

	mined, err := cc.waitForReceipt(receiptCtx, signed.Hash())
	if err != nil {
		return receipt, fmt.Errorf("onchain.%s: wait receipt %s: %w", op, receipt.TxHash, err)
	}
	if mined.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("onchain.%s: tx reverted: %s", op, receipt.TxHash)
	}
	if mined.BlockNumber != nil {
		receipt.BlockNumber = mined.BlockNumber.Uint64()
	}

	slog.Info("onchain: confirmed", "method", op, "tx", receipt.TxHash, "block", receipt.BlockNumber, "gas_used", mined.GasUsed)
	return receipt, nil
}

// getGasPrice devuelve el gas price con caché para no martillear el RPC.
func (cc *ContractClient) getGasPrice(ctx context.Context) (*big.Int, error) {
	cc.mu.RLock()
	cached := cc.cachedGasWei
	updatedAt := cc.gasUpdatedAt
	cc.mu.RUnlock()

	if cached != nil && time.Since(updatedAt) < gasPriceUpdateInterval {
		return cached, nil
	}

	price, err := cc.client.SuggestGasPrice(ctx)
	if err != nil {
		if cached != nil {
			return cached, nil
		}
		return big.NewInt(2_000_000_000), nil // 2 gwei fallback (Sepolia)
	}

	// +10% para entrar antes en bloque (copia: no mutar el valor devuelto)
	buffered := new(big.Int).Mul(price, big.NewInt(11))
	buffered.Div(buffered, big.NewInt(10))

	cc.mu.Lock()
	cc.cachedGasWei = buffered
	cc.gasUpdatedAt = time.Now()
	cc.mu.Unlock()

	return buffered, nil
}

// waitForReceipt hace polling del receipt hasta confirmarse o agotar el contexto.
func (cc *ContractClient) waitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			receipt, err := cc.client.TransactionReceipt(ctx, txHash)
			if err != nil {
				continue // aún no minada
			}
			return receipt, nil
		}
	}
}

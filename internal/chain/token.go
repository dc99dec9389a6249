package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/blues/mes/internal/config"
	"github.com/blues/mes/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ERC20代币 transfer 方法ABI（简化版）
const erc20ABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	}
]`

// transfer 调用的固定 gas 上限
const transferGasLimit = uint64(100_000)

// Transferer 链上代币转出实现，持托管账户私钥签名发送ERC20转账
type Transferer struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	from       common.Address
	tokenAddr  common.Address
	chainId    *big.Int
	tokenABI   abi.ABI
}

// NewTransferer 创建链上转出器
func NewTransferer(cfg config.ChainConfig) (*Transferer, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain rpc: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}

	return &Transferer{
		client:     client,
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(privateKey.PublicKey),
		tokenAddr:  common.HexToAddress(cfg.TokenAddress),
		chainId:    big.NewInt(cfg.ChainId),
		tokenABI:   parsedABI,
	}, nil
}

// Transfer 从托管账户向目标地址转出代币。
// 发送失败返回错误，由引擎回滚本次结算操作。
func (t *Transferer) Transfer(to string, amount int64, projectId string) error {
	ctx := context.Background()

	data, err := t.tokenABI.Pack("transfer", common.HexToAddress(to), big.NewInt(amount))
	if err != nil {
		return fmt.Errorf("failed to pack transfer call: %w", err)
	}

	nonce, err := t.client.PendingNonceAt(ctx, t.from)
	if err != nil {
		return fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := t.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, t.tokenAddr, big.NewInt(0), transferGasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(t.chainId), t.privateKey)
	if err != nil {
		return fmt.Errorf("failed to sign transfer tx: %w", err)
	}

	if err := t.client.SendTransaction(ctx, signedTx); err != nil {
		return fmt.Errorf("failed to send transfer tx: %w", err)
	}

	logger.Info("Sent transfer tx %s: %d to %s for project %s",
		signedTx.Hash().Hex(), amount, to, projectId)
	return nil
}

// LocalTransferer 本地模式转出器，只记录日志不上链
type LocalTransferer struct{}

// NewLocalTransferer 创建本地转出器
func NewLocalTransferer() *LocalTransferer {
	return &LocalTransferer{}
}

// Transfer 记录转出日志
func (*LocalTransferer) Transfer(to string, amount int64, projectId string) error {
	logger.Info("Local transfer: %d to %s for project %s", amount, to, projectId)
	return nil
}

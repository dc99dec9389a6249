package monitor

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/blues/mes/internal/config"
	"github.com/blues/mes/internal/logger"
	"github.com/blues/mes/internal/logic"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/panjf2000/ants/v2"
)

// 托管合约入账事件ABI
const escrowABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "payer", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"},
			{"indexed": false, "name": "projectId", "type": "string"}
		],
		"name": "PaymentReceived",
		"type": "event"
	}
]`

// payment 一笔已确认的入账
type payment struct {
	projectId string
	payer     string
	amount    int64
	blockNum  uint64
}

// PaymentMonitor 链上入账监控。轮询托管合约的 PaymentReceived 事件，
// 将已到账的代币支付路由进引擎。
type PaymentMonitor struct {
	client       *ethclient.Client
	projectLogic *logic.ProjectLogic
	escrowAddr   common.Address
	escrowABI    abi.ABI
	pollInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	nextBlock uint64 // 下一个待处理区块
}

// NewPaymentMonitor 创建入账监控器
func NewPaymentMonitor(cfg config.ChainConfig, projectLogic *logic.ProjectLogic) (*PaymentMonitor, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain rpc: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse escrow ABI: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &PaymentMonitor{
		client:       client,
		projectLogic: projectLogic,
		escrowAddr:   common.HexToAddress(cfg.EscrowAddress),
		escrowABI:    parsedABI,
		pollInterval: time.Duration(cfg.PollInterval) * time.Second,
		ctx:          ctx,
		cancel:       cancel,
		nextBlock:    uint64(cfg.StartBlock),
	}, nil
}

// Start 启动监控
func (m *PaymentMonitor) Start() error {
	logger.Info("Starting payment monitor")

	// 测试 RPC 连接
	header, err := m.client.HeaderByNumber(m.ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to blockchain: %w", err)
	}
	logger.Info("Connected to blockchain, current block: %d", header.Number.Uint64())

	go m.loop()
	return nil
}

// Stop 停止监控
func (m *PaymentMonitor) Stop() {
	logger.Info("Stopping payment monitor")
	m.cancel()
}

// loop 监控循环
func (m *PaymentMonitor) loop() {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Payment monitor stopped")
			return
		case <-ticker.C:
			header, err := m.client.HeaderByNumber(m.ctx, nil)
			if err != nil {
				logger.Error("Failed to get current block number: %v", err)
				continue
			}
			current := header.Number.Uint64()

			from := m.getNextBlock()
			if from > current {
				continue
			}

			if err := m.processBlocks(from, current); err != nil {
				logger.Error("Error processing blocks %d-%d: %v", from, current, err)
				continue
			}
			m.setNextBlock(current + 1)
		}
	}
}

// processBlocks 拉取区块范围内的入账事件并按项目分组处理
func (m *PaymentMonitor) processBlocks(fromBlock, toBlock uint64) error {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{m.escrowAddr},
	}

	logs, err := m.client.FilterLogs(m.ctx, query)
	if err != nil {
		return fmt.Errorf("failed to filter logs: %w", err)
	}
	if len(logs) == 0 {
		return nil
	}

	logger.Debug("Found %d logs for blocks %d-%d", len(logs), fromBlock, toBlock)

	// 按项目分组，组内保持日志顺序
	byProject := make(map[string][]payment)
	for _, lg := range logs {
		p, err := m.parsePayment(lg)
		if err != nil {
			logger.Error("Error parsing payment event: %v", err)
			continue
		}
		byProject[p.projectId] = append(byProject[p.projectId], p)
	}
	if len(byProject) == 0 {
		return nil
	}

	// 临时协程池按分组并发处理，单个项目内串行保证顺序
	pool, err := ants.NewPool(len(byProject))
	if err != nil {
		return fmt.Errorf("failed to create pool for %d groups: %w", len(byProject), err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for projectId, payments := range byProject {
		projectId, payments := projectId, payments
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			m.processProjectPayments(projectId, payments)
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit task to pool: %v", err)
		}
	}
	wg.Wait()

	return nil
}

// processProjectPayments 依次入账单个项目的支付
func (m *PaymentMonitor) processProjectPayments(projectId string, payments []payment) {
	for _, p := range payments {
		if err := m.projectLogic.HandlePayment(p.projectId, p.payer, p.amount); err != nil {
			logger.Error("Failed to route payment for project %s (payer %s, amount %d): %v",
				p.projectId, p.payer, p.amount, err)
			continue
		}
		logger.Info("Routed payment for project %s: %d from %s at block %d",
			p.projectId, p.amount, p.payer, p.blockNum)
	}
}

// parsePayment 解析入账事件
func (m *PaymentMonitor) parsePayment(lg types.Log) (payment, error) {
	event := m.escrowABI.Events["PaymentReceived"]
	if len(lg.Topics) < 2 || lg.Topics[0] != event.ID {
		return payment{}, fmt.Errorf("unexpected event signature: %s", lg.Topics[0].Hex())
	}

	values, err := m.escrowABI.Unpack("PaymentReceived", lg.Data)
	if err != nil {
		return payment{}, fmt.Errorf("failed to unpack event data: %w", err)
	}
	if len(values) != 2 {
		return payment{}, fmt.Errorf("unexpected event data length: %d", len(values))
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return payment{}, fmt.Errorf("unexpected amount type %T", values[0])
	}
	projectId, ok := values[1].(string)
	if !ok {
		return payment{}, fmt.Errorf("unexpected projectId type %T", values[1])
	}

	return payment{
		projectId: projectId,
		payer:     common.BytesToAddress(lg.Topics[1].Bytes()).Hex(),
		amount:    amount.Int64(),
		blockNum:  lg.BlockNumber,
	}, nil
}

// getNextBlock 读取下一个待处理区块号
func (m *PaymentMonitor) getNextBlock() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextBlock
}

// setNextBlock 更新下一个待处理区块号
func (m *PaymentMonitor) setNextBlock(block uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBlock = block
}

package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/blues/fms/internal/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// 任务托管合约ABI（只包含结算用到的方法）
const escrowABI = `[
	{
		"inputs": [
			{"name": "freelancer", "type": "address"},
			{"name": "submissionId", "type": "uint256"}
		],
		"name": "approveSubmission",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Client 链上账本客户端，负责提交审批的合约调用
type Client struct {
	client       *ethclient.Client
	privateKey   *ecdsa.PrivateKey
	chainId      *big.Int
	contractAddr common.Address
	contract     *bind.BoundContract
}

// Init 初始化链上客户端
func Init(cfg config.ChainConfig) (*Client, error) {
	// 连接RPC节点
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc node: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	contractAddr := common.HexToAddress(cfg.ContractAddr)
	contract := bind.NewBoundContract(contractAddr, parsedABI, client, client, client)

	return &Client{
		client:       client,
		privateKey:   privateKey,
		chainId:      big.NewInt(cfg.ChainId),
		contractAddr: contractAddr,
		contract:     contract,
	}, nil
}

// ApproveSubmission 调用合约审批提交并触发代币转账，返回交易哈希
func (c *Client) ApproveSubmission(ctx context.Context, freelancerAddress string, chainSubmissionID int64) (string, error) {
	if !common.IsHexAddress(freelancerAddress) {
		return "", fmt.Errorf("invalid freelancer address: %s", freelancerAddress)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return "", fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	tx, err := c.contract.Transact(auth, "approveSubmission",
		common.HexToAddress(freelancerAddress),
		new(big.Int).SetInt64(chainSubmissionID),
	)
	if err != nil {
		return "", fmt.Errorf("approveSubmission call failed: %w", err)
	}

	return tx.Hash().Hex(), nil
}

// GetAccountAddress 获取签名账户地址
func (c *Client) GetAccountAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// Close 关闭RPC连接
func (c *Client) Close() {
	c.client.Close()
}

package main

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/investbud/chat-gateway/internal/config"
	"github.com/investbud/chat-gateway/internal/wallet"
)

const balanceOfABI = `[{
	"type": "function",
	"name": "balanceOf",
	"inputs": [{"name": "account", "type": "address"}],
	"outputs": [{"name": "", "type": "uint256"}],
	"constant": true
}]`

// Prints the wallet's USDC balance on the payment network, a quick sanity
// check before a paid analysis.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}
	if cfg.Payment.PrivateKey == "" {
		log.Fatal("config invalid", zap.String("missing", "WALLET_PRIVATE_KEY"))
	}

	signer, err := wallet.NewLocalSigner(cfg.Payment.PrivateKey, cfg.Payment.ChainID)
	if err != nil {
		log.Fatal("wallet init failed", zap.Error(err))
	}

	eth, err := ethclient.Dial(cfg.Payment.RPCURL)
	if err != nil {
		log.Fatal("rpc dial failed", zap.Error(err))
	}

	parsed, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		log.Fatal("parse ABI failed", zap.Error(err))
	}
	data, err := parsed.Pack("balanceOf", signer.Address())
	if err != nil {
		log.Fatal("pack balanceOf failed", zap.Error(err))
	}

	asset := common.HexToAddress(cfg.Payment.USDCAsset)
	result, err := eth.CallContract(context.Background(), ethereum.CallMsg{
		To:   &asset,
		Data: data,
	}, nil)
	if err != nil {
		log.Fatal("balanceOf call failed", zap.Error(err))
	}

	balance := new(big.Int).SetBytes(result)
	fmt.Printf("wallet:  %s\n", signer.Address().Hex())
	fmt.Printf("asset:   %s (%s)\n", asset.Hex(), cfg.Payment.Network)
	fmt.Printf("balance: %s\n", balance)
}

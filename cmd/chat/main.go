package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/investbud/chat-gateway/internal/backend"
	"github.com/investbud/chat-gateway/internal/chat"
	"github.com/investbud/chat-gateway/internal/config"
	"github.com/investbud/chat-gateway/internal/entitlement"
	"github.com/investbud/chat-gateway/internal/rag"
	"github.com/investbud/chat-gateway/internal/session"
	"github.com/investbud/chat-gateway/internal/store"
	"github.com/investbud/chat-gateway/internal/wallet"
	"github.com/investbud/chat-gateway/internal/x402"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.ValidateClient(); err != nil {
		log.Fatal("config invalid", zap.Error(err))
	}

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	var st store.Store
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, conversation state will not survive restarts", zap.Error(err))
		st = store.NewMemoryStore()
	} else {
		st = store.NewRedisStore(rdb)
	}

	signer, err := wallet.NewLocalSigner(cfg.Payment.PrivateKey, cfg.Payment.ChainID)
	if err != nil {
		log.Fatal("wallet init failed", zap.Error(err))
	}

	var reform rag.Reformatter
	if cfg.OpenAI.APIKey != "" {
		reform = rag.NewOpenAIClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	svc := chat.NewService(
		backend.NewClient(cfg.Backend.URL),
		x402.NewExecutor(nil, signer, log),
		entitlement.New(st),
		session.New(st),
		signer,
		reform,
		cfg.Payment.Network,
		log,
	)

	fmt.Printf("Investbud chat — wallet %s on %s\n", signer.Address().Hex(), cfg.Payment.Network)
	fmt.Println("Type a message, /reset to start over, /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/reset":
			if err := svc.Reset(ctx); err != nil {
				fmt.Println("reset failed:", err)
			} else {
				fmt.Println("conversation reset")
			}
			continue
		}
		if svc.Busy() {
			fmt.Println("a request is still in flight, hold on")
			continue
		}
		reply, err := svc.Send(ctx, line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(reply.Text)
	}
}

package main

import (
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/wire"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/tradlabs/trad-wallet-bot/service/chain"
	"github.com/tradlabs/trad-wallet-bot/service/session"
	"github.com/tradlabs/trad-wallet-bot/service/transfer"
	"github.com/tradlabs/trad-wallet-bot/service/wallet"
)

var serviceSet = wire.NewSet(
	provideChainConfig,
	chain.New,
	wallet.New,
	provideTransferConfig,
	transfer.New,
	provideSessionConfig,
	session.New,
)

func provideChainConfig(v *viper.Viper) chain.Config {
	v.SetDefault("solana.endpoint", rpc.MainNetBeta_RPC)

	return chain.Config{
		Endpoint:       v.GetString("solana.endpoint"),
		ConfirmTimeout: v.GetDuration("solana.confirm_timeout"),
		PollInterval:   v.GetDuration("solana.poll_interval"),
		HistoryTTL:     v.GetDuration("solana.history_ttl"),
	}
}

func provideTransferConfig(v *viper.Viper) transfer.Config {
	v.SetDefault("transfer.reserve", "0.00001")

	return transfer.Config{
		Reserve: decimalOf(v, "transfer.reserve"),
	}
}

func provideSessionConfig(v *viper.Viper) session.Config {
	v.SetDefault("transfer.max_amount", "1000")
	v.SetDefault("transfer.min_balance", "0.001")
	v.SetDefault("transfer.reserve", "0.00001")
	v.SetDefault("history.limit", 5)

	return session.Config{
		MaxAmount:    decimalOf(v, "transfer.max_amount"),
		MinBalance:   decimalOf(v, "transfer.min_balance"),
		Reserve:      decimalOf(v, "transfer.reserve"),
		HistoryLimit: v.GetInt("history.limit"),
	}
}

func decimalOf(v *viper.Viper, key string) decimal.Decimal {
	return decimal.RequireFromString(v.GetString(key))
}

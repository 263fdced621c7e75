package main

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/tradlabs/trad-wallet-bot/worker/janitor"
)

var workerSet = wire.NewSet(
	provideJanitorConfig,
	janitor.New,
)

func provideJanitorConfig(v *viper.Viper) janitor.Config {
	v.SetDefault("flow.ttl", "10m")
	v.SetDefault("flow.sweep_interval", "1m")

	return janitor.Config{
		TTL:      v.GetDuration("flow.ttl"),
		Interval: v.GetDuration("flow.sweep_interval"),
	}
}

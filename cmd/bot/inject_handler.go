package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/wire"
	"github.com/rs/cors"
	"github.com/spf13/viper"
	"github.com/tradlabs/trad-wallet-bot/handler/hc"
	"github.com/tradlabs/trad-wallet-bot/handler/telegram"
)

var handlerSet = wire.NewSet(
	provideTelegramConfig,
	telegram.New,
	provideServer,
)

func provideTelegramConfig(v *viper.Viper) telegram.Config {
	return telegram.Config{
		Token: v.GetString("telegram.token"),
		Debug: opt.debug,
	}
}

func provideServer() *http.Server {
	m := chi.NewMux()
	m.Use(middleware.RealIP)
	m.Use(middleware.Logger)
	m.Use(middleware.Recoverer)
	m.Use(cors.AllowAll().Handler)

	m.Mount("/hc", hc.Handler(version))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", opt.port),
		Handler: m,
	}
}

package main

import (
	"github.com/google/wire"
	"github.com/tradlabs/trad-wallet-bot/store/flow"
	"github.com/tradlabs/trad-wallet-bot/store/wallet"
)

var storeSet = wire.NewSet(
	wallet.New,
	flow.New,
)

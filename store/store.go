package store

import (
	"errors"

	"github.com/tradlabs/trad-wallet-bot/core"
)

func IsErrNotFound(err error) bool {
	return errors.Is(err, core.ErrWalletNotFound) || errors.Is(err, core.ErrFlowNotFound)
}

// ShardCount is how many lock-sharded buckets the in-memory stores split
// users across. No operation spans two users, so shards never coordinate.
const ShardCount = 32

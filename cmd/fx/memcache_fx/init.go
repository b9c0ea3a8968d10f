package memcache_fx

import (
	mem "compass/pkg/memcache"

	"go.uber.org/fx"
)

var Module = fx.Provide(provideSessionLocks)

func provideSessionLocks() *mem.SessionLocks {
	return mem.NewSessionLocks()
}

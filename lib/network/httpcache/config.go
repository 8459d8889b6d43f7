package httpcache

import (
	"net/url"
	"strconv"
	"strings"

	"boscoin.io/devote/lib/errors"
)

const DefaultMemCacheSize = 1024

// NewAdapterFromString makes the cache adapter from uri; `memory://?size=N`
// or `redis://host:port[,host:port]`.
func NewAdapterFromString(s string) (Adapter, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.InvalidConfig.Wrap(err).SetData("http-cache", s)
	}

	switch u.Scheme {
	case "memory":
		size := DefaultMemCacheSize
		if v := u.Query().Get("size"); len(v) > 0 {
			if size, err = strconv.Atoi(v); err != nil || size < 1 {
				return nil, errors.InvalidConfig.Clone().SetData("http-cache", s).SetData("reason", "bad size")
			}
		}
		return NewMemCacheAdapter(size)
	case "redis":
		addrs := map[string]string{}
		for i, addr := range strings.Split(u.Host, ",") {
			if len(addr) < 1 {
				continue
			}
			addrs["server"+strconv.Itoa(i)] = addr
		}
		if len(addrs) < 1 {
			return nil, errors.InvalidConfig.Clone().SetData("http-cache", s).SetData("reason", "empty address")
		}
		return NewRedisCacheAdapter(&RedisRingOptions{Addrs: addrs}), nil
	default:
		return nil, errors.InvalidConfig.Clone().SetData("http-cache", s).SetData("reason", "unknown scheme")
	}
}

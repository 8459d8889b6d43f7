package storage

import (
	"net/url"
	"strings"

	"boscoin.io/devote/lib/errors"
)

// Config selects the leveldb storage; `memory://` keeps everything in
// memory, `file:///path` opens the database at path.
type Config struct {
	Scheme string
	Path   string
}

func NewConfigFromString(s string) (*Config, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.InvalidConfig.Wrap(err).SetData("storage", s)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		return &Config{Scheme: "memory"}, nil
	case "file":
		if len(u.Path) < 1 {
			return nil, errors.InvalidConfig.Clone().SetData("storage", s).SetData("reason", "empty path")
		}
		return &Config{Scheme: "file", Path: u.Path}, nil
	default:
		return nil, errors.InvalidConfig.Clone().SetData("storage", s).SetData("reason", "unknown scheme")
	}
}

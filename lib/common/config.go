package common

import (
	"io/ioutil"
	"time"

	yaml "gopkg.in/yaml.v2"

	"boscoin.io/devote/lib/errors"
)

const (
	DefaultNetworkID           = "devote-devnet"
	DefaultSubmitTimeout       = 30 * time.Second
	DefaultReadTimeout         = 5 * time.Second
	DefaultReceiptPollInterval = 200 * time.Millisecond
	DefaultReadRetries         = 3
	DefaultRefreshAttempts     = 5
	DefaultRefreshInterval     = 200 * time.Millisecond
	DefaultReceiptCacheSize    = 1024
)

//
// Config has the timeouts and limits of the ballot client. Every network
// operation is bounded by one of the timeouts.
//
type Config struct {
	NetworkID []byte

	// SubmitTimeout bounds a whole submission, from loading the sequence id
	// to the final receipt.
	SubmitTimeout time.Duration
	ReadTimeout   time.Duration

	ReceiptPollInterval time.Duration
	ReadRetries         int

	// RefreshAttempts is how many times a refresh is repeated when its reads
	// disagree on height, or when it lags behind a receipt.
	RefreshAttempts int
	RefreshInterval time.Duration

	ReceiptCacheSize int
}

func NewConfig(networkID []byte) Config {
	p := Config{}

	p.NetworkID = networkID
	p.SubmitTimeout = DefaultSubmitTimeout
	p.ReadTimeout = DefaultReadTimeout
	p.ReceiptPollInterval = DefaultReceiptPollInterval
	p.ReadRetries = DefaultReadRetries
	p.RefreshAttempts = DefaultRefreshAttempts
	p.RefreshInterval = DefaultRefreshInterval
	p.ReceiptCacheSize = DefaultReceiptCacheSize

	return p
}

func (c Config) Validate() error {
	switch {
	case len(c.NetworkID) < 1:
		return errors.InvalidConfig.Clone().SetData("field", "network-id")
	case c.SubmitTimeout <= 0:
		return errors.InvalidConfig.Clone().SetData("field", "submit-timeout")
	case c.ReadTimeout <= 0:
		return errors.InvalidConfig.Clone().SetData("field", "read-timeout")
	case c.ReceiptPollInterval <= 0 || c.ReceiptPollInterval >= c.SubmitTimeout:
		return errors.InvalidConfig.Clone().SetData("field", "receipt-poll-interval")
	case c.ReadRetries < 0:
		return errors.InvalidConfig.Clone().SetData("field", "read-retries")
	case c.RefreshAttempts < 1:
		return errors.InvalidConfig.Clone().SetData("field", "refresh-attempts")
	case c.ReceiptCacheSize < 1:
		return errors.InvalidConfig.Clone().SetData("field", "receipt-cache-size")
	}

	return nil
}

// configFile is the yaml layout of a config file. Missing fields keep the
// value already set in the Config.
type configFile struct {
	NetworkID           string        `yaml:"network-id"`
	SubmitTimeout       time.Duration `yaml:"submit-timeout"`
	ReadTimeout         time.Duration `yaml:"read-timeout"`
	ReceiptPollInterval time.Duration `yaml:"receipt-poll-interval"`
	ReadRetries         *int          `yaml:"read-retries"`
	RefreshAttempts     int           `yaml:"refresh-attempts"`
	RefreshInterval     time.Duration `yaml:"refresh-interval"`
	ReceiptCacheSize    int           `yaml:"receipt-cache-size"`
}

func (c *Config) ParseYAML(b []byte) error {
	var f configFile
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return errors.InvalidConfig.Wrap(err)
	}

	if len(f.NetworkID) > 0 {
		c.NetworkID = []byte(f.NetworkID)
	}
	if f.SubmitTimeout > 0 {
		c.SubmitTimeout = f.SubmitTimeout
	}
	if f.ReadTimeout > 0 {
		c.ReadTimeout = f.ReadTimeout
	}
	if f.ReceiptPollInterval > 0 {
		c.ReceiptPollInterval = f.ReceiptPollInterval
	}
	if f.ReadRetries != nil {
		c.ReadRetries = *f.ReadRetries
	}
	if f.RefreshAttempts > 0 {
		c.RefreshAttempts = f.RefreshAttempts
	}
	if f.RefreshInterval > 0 {
		c.RefreshInterval = f.RefreshInterval
	}
	if f.ReceiptCacheSize > 0 {
		c.ReceiptCacheSize = f.ReceiptCacheSize
	}

	return nil
}

func (c *Config) LoadFile(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.InvalidConfig.Wrap(err)
	}

	return c.ParseYAML(b)
}

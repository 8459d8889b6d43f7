// Provide test utilities for the common package
package common

import (
	"time"
)

// Initialize a new config object for unittests
func NewTestConfig() Config {
	p := NewConfig([]byte("devote-unittest"))

	p.SubmitTimeout = 5 * time.Second
	p.ReadTimeout = 2 * time.Second
	p.ReceiptPollInterval = 10 * time.Millisecond
	p.RefreshAttempts = 3
	p.RefreshInterval = 10 * time.Millisecond
	p.ReadRetries = 0
	p.ReceiptCacheSize = 16

	return p
}

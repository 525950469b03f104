package netutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTransportDefaults(t *testing.T) {
	tr := NewTransport(TransportOptions{})
	assert.Equal(t, 100, tr.MaxIdleConns)
	assert.Equal(t, 10, tr.MaxIdleConnsPerHost)
	assert.Equal(t, 30*time.Second, tr.IdleConnTimeout)
	assert.Equal(t, 5*time.Second, tr.TLSHandshakeTimeout)
	assert.NotNil(t, tr.Proxy)

	tr = NewTransport(TransportOptions{MaxIdleConns: 20, DialTimeout: time.Second})
	assert.Equal(t, 20, tr.MaxIdleConns)
	assert.Equal(t, time.Second, tr.TLSHandshakeTimeout)
}

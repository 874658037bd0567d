package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptionsTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, Options{}.timeout(5*time.Second))
	assert.Equal(t, time.Second, Options{Timeout: time.Second}.timeout(5*time.Second))
	assert.Equal(t, 2*time.Second, Options{Timeout: -time.Second}.timeout(2*time.Second))
}

package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingReferrals_PutAndTake(t *testing.T) {
	p := NewPendingReferrals()

	code, ok := p.Take(1001)
	assert.False(t, ok)
	assert.Empty(t, code)

	p.Put(1001, "ABCD1234")

	code, ok = p.Take(1001)
	assert.True(t, ok)
	assert.Equal(t, "ABCD1234", code)

	// Take is consume-once
	_, ok = p.Take(1001)
	assert.False(t, ok)
}

func TestPendingReferrals_LatestPayloadWins(t *testing.T) {
	p := NewPendingReferrals()
	p.Put(1001, "ABCD1234")
	p.Put(1001, "EF567890")

	code, ok := p.Take(1001)
	assert.True(t, ok)
	assert.Equal(t, "EF567890", code)
}

func TestPendingReferrals_IsolatedPerUser(t *testing.T) {
	p := NewPendingReferrals()
	p.Put(1001, "ABCD1234")

	_, ok := p.Take(1002)
	assert.False(t, ok)

	code, ok := p.Take(1001)
	assert.True(t, ok)
	assert.Equal(t, "ABCD1234", code)
}

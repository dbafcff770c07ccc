// Package handler provides Telegram bot command handlers.
package handler

import "sync"

// PendingReferrals parks referral payloads from /start deep links until the
// user's first spin creates their account. Accounts are created lazily, so
// the payload cannot be persisted at /start time.
type PendingReferrals struct {
	mu    sync.Mutex
	codes map[int64]string
}

// NewPendingReferrals creates an empty cache.
func NewPendingReferrals() *PendingReferrals {
	return &PendingReferrals{codes: make(map[int64]string)}
}

// Put records the inviter code for a user.
func (p *PendingReferrals) Put(userID int64, code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes[userID] = code
}

// Take removes and returns the pending code for a user, if any.
func (p *PendingReferrals) Take(userID int64) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	code, ok := p.codes[userID]
	if ok {
		delete(p.codes, userID)
	}
	return code, ok
}

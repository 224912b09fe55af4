// package state issues and verifies the signed, single-use tokens that bind an
// OAuth login redirect to its callback.
//
// A token travels as "nonce.expiresAt.signature" where the signature is an
// HMAC-SHA256 over "nonce|expiresAt". A token verifies only when the signature
// recomputes, the expiry is in the future, and the nonce is still pending.
// Verification consumes the nonce, so each token is good for exactly one
// callback regardless of outcome.
package state

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long an issued state token stays valid.
const DefaultTTL = 10 * time.Minute

// Store tracks pending nonces between issue and callback.
//
// Implementations must be safe for concurrent use. The in-process
// [MemoryStore] suffices for a single instance; a distributed deployment can
// swap in a shared store without touching token logic.
type Store interface {
	// Insert records a nonce as pending.
	Insert(nonce string)
	// Consume removes a nonce, reporting whether it was pending.
	Consume(nonce string) bool
}

// MemoryStore is a mutex-guarded in-process [Store].
//
// Entries are removed on consumption; entries past their expiry are rejected
// at verification time rather than swept, so an abandoned login leaves at
// most one orphaned nonce until process restart.
type MemoryStore struct {
	mu     sync.Mutex
	nonces map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nonces: make(map[string]struct{})}
}

func (s *MemoryStore) Insert(nonce string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[nonce] = struct{}{}
}

func (s *MemoryStore) Consume(nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nonces[nonce]; !ok {
		return false
	}
	delete(s.nonces, nonce)
	return true
}

// Issuer creates and verifies signed state tokens using a process-wide secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	store  Store
	now    func() time.Time
}

// IssuerOpts contains optional settings for [NewIssuer].
type IssuerOpts struct {
	TTL   time.Duration    // token lifetime, default [DefaultTTL]
	Store Store            // pending-nonce store, default [NewMemoryStore]
	Now   func() time.Time // clock override for tests
}

// NewIssuer creates an Issuer signing with the given secret.
func NewIssuer(secret string, opts IssuerOpts) *Issuer {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Issuer{
		secret: []byte(secret),
		ttl:    opts.TTL,
		store:  opts.Store,
		now:    opts.Now,
	}
}

// Issue generates a state token, records its nonce as pending, and returns
// the serialized "nonce.expiresAt.signature" form.
func (i *Issuer) Issue() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	nonce := hex.EncodeToString(buf)
	expiresAt := i.now().Add(i.ttl).UnixMilli()
	sig := i.sign(nonce, expiresAt)

	i.store.Insert(nonce)
	return fmt.Sprintf("%s.%d.%s", nonce, expiresAt, sig), nil
}

// VerifyAndConsume validates a serialized token and, when valid, removes its
// nonce from the pending set so the token cannot be used again.
//
// The check order is signature, expiry, then consumption. Consuming last
// keeps every failure path side-effect-free: a forged token sharing a real
// nonce cannot burn that nonce out from under the genuine callback.
func (i *Issuer) VerifyAndConsume(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}

	nonce, expiryField, sig := parts[0], parts[1], parts[2]
	expiresAt, err := strconv.ParseInt(expiryField, 10, 64)
	if err != nil {
		return false
	}

	expected := i.sign(nonce, expiresAt)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return false
	}

	if !i.now().Before(time.UnixMilli(expiresAt)) {
		return false
	}

	return i.store.Consume(nonce)
}

func (i *Issuer) sign(nonce string, expiresAt int64) string {
	mac := hmac.New(sha256.New, i.secret)
	fmt.Fprintf(mac, "%s|%d", nonce, expiresAt)
	return hex.EncodeToString(mac.Sum(nil))
}

package services

import (
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Ananth-NQI/servicebook-backend/internal/models"
)

const (
	pendingPrefix  = "otp:"
	verifiedPrefix = "verified:"

	// Entries are evicted this long after being written. Code expiry is
	// checked separately against OTP.ExpiresAt.
	retention = 24 * time.Hour
)

// VerificationStore holds pending codes and the verified set.
type VerificationStore interface {
	// PutCode stores code for email, replacing any earlier pending code.
	PutCode(otp models.OTP)
	// CheckCode validates code for email at now. On success the pending code
	// is removed and email joins the verified set.
	CheckCode(email, code string, now time.Time) error
	// ConsumeVerified removes email from the verified set, reporting whether it was there.
	ConsumeVerified(email string) bool
	// MarkVerified puts email back into the verified set.
	MarkVerified(email string)
	IsVerified(email string) bool
}

// CacheVerificationStore keeps verification state in go-cache. The mutex
// makes each check and consume atomic per process.
type CacheVerificationStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewCacheVerificationStore() *CacheVerificationStore {
	return &CacheVerificationStore{
		cache: cache.New(retention, 10*time.Minute),
	}
}

func (s *CacheVerificationStore) PutCode(otp models.OTP) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(pendingPrefix+otp.Email, otp, cache.DefaultExpiration)
}

func (s *CacheVerificationStore) CheckCode(email, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(pendingPrefix + email)
	if !ok {
		return ErrOTPNotFound
	}
	otp := v.(models.OTP)

	if otp.IsExpired(now) {
		s.cache.Delete(pendingPrefix + email)
		return ErrOTPExpired
	}
	if otp.Code != code {
		return ErrOTPMismatch
	}

	s.cache.Delete(pendingPrefix + email)
	s.cache.Set(verifiedPrefix+email, true, cache.DefaultExpiration)
	return nil
}

func (s *CacheVerificationStore) ConsumeVerified(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Get(verifiedPrefix + email); !ok {
		return false
	}
	s.cache.Delete(verifiedPrefix + email)
	return true
}

func (s *CacheVerificationStore) MarkVerified(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(verifiedPrefix+email, true, cache.DefaultExpiration)
}

func (s *CacheVerificationStore) IsVerified(email string) bool {
	_, ok := s.cache.Get(verifiedPrefix + email)
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

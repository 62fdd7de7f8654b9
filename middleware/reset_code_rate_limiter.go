package middleware

import (
	"sync"
	"time"
)

// ResetRequestRecord tracks password reset code requests for an email address
type ResetRequestRecord struct {
	Count       int
	FirstReqAt  time.Time
	LastReqAt   time.Time
	Locked      bool
	LockedUntil time.Time
}

// ResetCodeRateLimiter manages rate limiting for password reset code requests
type ResetCodeRateLimiter struct {
	emailRecords  map[string]*ResetRequestRecord
	ipRecords     map[string]*IPResetRecord
	mu            sync.RWMutex
	cleanupTicker *time.Ticker
}

// IPResetRecord tracks reset code requests per IP
type IPResetRecord struct {
	Count      int
	FirstReqAt time.Time
	LastReqAt  time.Time
}

var globalResetLimiter *ResetCodeRateLimiter
var resetLimiterOnce sync.Once

// GetResetCodeRateLimiter returns the global reset code rate limiter instance
func GetResetCodeRateLimiter() *ResetCodeRateLimiter {
	resetLimiterOnce.Do(func() {
		globalResetLimiter = NewResetCodeRateLimiter()
	})
	return globalResetLimiter
}

// NewResetCodeRateLimiter creates a new reset code rate limiter
func NewResetCodeRateLimiter() *ResetCodeRateLimiter {
	limiter := &ResetCodeRateLimiter{
		emailRecords: make(map[string]*ResetRequestRecord),
		ipRecords:    make(map[string]*IPResetRecord),
	}

	// Cleanup old records every 5 minutes
	limiter.cleanupTicker = time.NewTicker(5 * time.Minute)
	go limiter.cleanup()

	return limiter
}

// cleanup removes old records periodically
func (l *ResetCodeRateLimiter) cleanup() {
	for range l.cleanupTicker.C {
		l.mu.Lock()
		now := time.Now()

		// Cleanup email records older than 1 hour
		for email, record := range l.emailRecords {
			if !record.Locked && now.Sub(record.LastReqAt) > time.Hour {
				delete(l.emailRecords, email)
			} else if record.Locked && now.After(record.LockedUntil) {
				// Reset locked records after lock expires
				record.Locked = false
				record.Count = 0
				record.FirstReqAt = time.Time{}
				record.LastReqAt = time.Time{}
			}
		}

		// Cleanup IP records older than 30 minutes
		for ip, record := range l.ipRecords {
			if now.Sub(record.LastReqAt) > 30*time.Minute {
				delete(l.ipRecords, ip)
			}
		}

		l.mu.Unlock()
	}
}

// CheckEmailRateLimit checks if an email address can request another reset code.
// Returns (allowed, waitDuration, message)
func (l *ResetCodeRateLimiter) CheckEmailRateLimit(email string) (bool, time.Duration, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	record, exists := l.emailRecords[email]

	if !exists {
		// First request - allowed
		l.emailRecords[email] = &ResetRequestRecord{
			Count:      1,
			FirstReqAt: now,
			LastReqAt:  now,
			Locked:     false,
		}
		return true, 0, ""
	}

	// Check if locked
	if record.Locked {
		if now.Before(record.LockedUntil) {
			waitTime := record.LockedUntil.Sub(now)
			return false, waitTime, "You have reached the request limit, please try again in 1 hour"
		}
		// Lock expired, reset
		record.Locked = false
		record.Count = 0
		record.FirstReqAt = now
		record.LastReqAt = now
		return true, 0, ""
	}

	record.Count++
	record.LastReqAt = now

	switch record.Count {
	case 1:
		return true, 0, ""
	case 2:
		elapsed := now.Sub(record.FirstReqAt)
		if elapsed < time.Minute {
			waitTime := time.Minute - elapsed
			record.Count-- // Revert count
			return false, waitTime, "Wait 1 minute before requesting another code"
		}
		return true, 0, ""
	case 3:
		elapsed := now.Sub(record.FirstReqAt)
		if elapsed < 5*time.Minute {
			waitTime := 5*time.Minute - elapsed
			record.Count-- // Revert count
			return false, waitTime, "Wait 5 minutes before requesting another code"
		}
		return true, 0, ""
	case 4:
		elapsed := now.Sub(record.FirstReqAt)
		if elapsed < 10*time.Minute {
			waitTime := 10*time.Minute - elapsed
			record.Count-- // Revert count
			return false, waitTime, "Wait 10 minutes before requesting another code"
		}
		return true, 0, ""
	case 5:
		// Fifth request - lock for 1 hour
		record.Locked = true
		record.LockedUntil = now.Add(time.Hour)
		return false, time.Hour, "You have reached the request limit, please try again in 1 hour"
	default:
		if record.Locked && now.Before(record.LockedUntil) {
			waitTime := record.LockedUntil.Sub(now)
			return false, waitTime, "You have reached the request limit, please try again in 1 hour"
		}
		// Lock expired, reset
		record.Locked = false
		record.Count = 1
		record.FirstReqAt = now
		record.LastReqAt = now
		return true, 0, ""
	}
}

// CheckIPRateLimit checks if an IP can request a reset code.
// Returns (allowed, waitDuration, message)
func (l *ResetCodeRateLimiter) CheckIPRateLimit(ip string) (bool, time.Duration, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	record, exists := l.ipRecords[ip]

	if !exists {
		l.ipRecords[ip] = &IPResetRecord{
			Count:      1,
			FirstReqAt: now,
			LastReqAt:  now,
		}
		return true, 0, ""
	}

	elapsed := now.Sub(record.FirstReqAt)
	if elapsed >= 30*time.Minute {
		// Reset counter after 30 minutes
		record.Count = 1
		record.FirstReqAt = now
		record.LastReqAt = now
		return true, 0, ""
	}

	record.Count++
	record.LastReqAt = now

	if record.Count > 5 {
		// More than 5 requests in 30 minutes
		waitTime := 30*time.Minute - elapsed
		record.Count-- // Revert count
		return false, waitTime, "Too many requests. Try again later."
	}

	return true, 0, ""
}

// ResetEmailLimit resets the rate limit for an email (used after a successful password reset)
func (l *ResetCodeRateLimiter) ResetEmailLimit(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.emailRecords, email)
}

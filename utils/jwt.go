package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RedisClient is an optional shared Redis client used for token revocation
// and for the completion state store. It is nil when REDIS_ADDR is not
// configured; callers must fall back gracefully.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	addr = strings.ReplaceAll(addr, " ", "")
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		var dbn int
		_, _ = fmt.Sscanf(dbStr, "%d", &dbn)
		opts.DB = dbn
	}
	rc := redis.NewClient(opts)
	ctx := context.Background()
	if err := rc.Ping(ctx).Err(); err != nil {
		fmt.Printf("warning: redis ping failed: %v\n", err)
		// don't fail startup for redis issues; revocation falls back to DB
		return
	}
	RedisClient = rc
}

type contextKey string

const UserIDKey = contextKey("userID")
const UserRoleKey = contextKey("userRole")
const DeviceIDKey = contextKey("deviceID")
const RequestIDKey = contextKey("requestID")

// ValidateToken validates a JWT token and returns the parsed token if valid
func ValidateToken(tokenString string) (*jwt.Token, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}

// GenerateAccessToken issues a short-lived access token (default 15 minutes).
func GenerateAccessToken(userID uint, role string) (string, error) {
	return GenerateAccessTokenWithExpiry(userID, role, 15*time.Minute)
}

// GenerateAccessTokenWithExpiry issues an access token with custom expiry duration
func GenerateAccessTokenWithExpiry(userID uint, role string, expiry time.Duration) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	now := time.Now()
	exp := now.Add(expiry)
	jti, err := generateJTI(32)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"id":   userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  jti,
		"aud":  os.Getenv("JWT_AUD"),
		"iss":  os.Getenv("JWT_ISS"),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateRefreshToken creates a refresh token, stores it in DB and returns the token string (contains jti)
func GenerateRefreshToken(userID uint) (string, string, error) {
	jti, err := generateJTI(48)
	if err != nil {
		return "", "", err
	}
	rt, err := models.NewRefreshToken(userID, 7) // 7 days
	if err != nil {
		return "", "", err
	}
	// override generated ID with jti for consistency
	rt.ID = jti
	if database.DB == nil {
		return "", "", errors.New("database not initialized")
	}
	if err := database.DB.Create(rt).Error; err != nil {
		return "", "", err
	}
	return jti, rt.ID, nil
}

// ValidateAccessToken parses the access token, validates the registered
// claims and checks the jti revocation store (Redis first, DB fallback).
func ValidateAccessToken(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, nil, errors.New("JWT_SECRET is not set")
	}
	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Require exact HS256 algorithm to avoid algorithm confusion.
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return token, nil, errors.New("invalid claims")
	}

	now := time.Now()
	if expRaw, ok := claims["exp"]; ok {
		if v, ok := toUnix(expRaw); ok && now.Unix() > v {
			return token, nil, errors.New("token expired")
		}
	}
	if nbfRaw, ok := claims["nbf"]; ok {
		if v, ok := toUnix(nbfRaw); ok && now.Unix() < v {
			return token, nil, errors.New("token not yet valid")
		}
	}

	audEnv := os.Getenv("JWT_AUD")
	if audEnv != "" {
		audRaw, ok := claims["aud"]
		if !ok {
			return token, nil, errors.New("aud claim missing")
		}
		switch v := audRaw.(type) {
		case string:
			if v != audEnv {
				return token, nil, errors.New("invalid audience")
			}
		case []interface{}:
			found := false
			for _, a := range v {
				if s, ok := a.(string); ok && s == audEnv {
					found = true
					break
				}
			}
			if !found {
				return token, nil, errors.New("invalid audience")
			}
		default:
			return token, nil, errors.New("invalid audience claim format")
		}
	}

	issEnv := os.Getenv("JWT_ISS")
	if issEnv != "" {
		if issRaw, ok := claims["iss"].(string); !ok || issRaw != issEnv {
			return token, nil, errors.New("invalid issuer")
		}
	}

	if jtiRaw, ok := claims["jti"].(string); ok && jtiRaw != "" {
		if RedisClient != nil {
			ctx := context.Background()
			res, err := RedisClient.Get(ctx, "jwt:blacklist:"+jtiRaw).Result()
			if err == nil && res == "1" {
				return token, nil, errors.New("token revoked")
			}
			// ignore redis errors (do not fail auth due to redis outage)
		} else if database.DB != nil {
			var rec struct {
				ID string `gorm:"primaryKey"`
			}
			err := database.DB.Table("revoked_tokens").Where("id = ?", jtiRaw).First(&rec).Error
			if err == nil {
				return token, nil, errors.New("token revoked")
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				// Ignore DB errors (do not fail authentication because of DB outage)
			}
		}
	}

	return token, claims, nil
}

func toUnix(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// ValidateRefreshToken checks whether a refresh token jti exists in DB and is not expired/revoked
func ValidateRefreshToken(jti string) (*models.RefreshToken, error) {
	if database.DB == nil {
		return nil, errors.New("database not initialized")
	}
	var rt models.RefreshToken
	if err := database.DB.Where("id = ?", jti).First(&rt).Error; err != nil {
		return nil, err
	}
	if rt.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, errors.New("refresh token expired")
	}
	return &rt, nil
}

// RevokeJTI inserts a jti into the revocation store. If Redis is configured, set a key with TTL.
// Otherwise fall back to inserting into `revoked_tokens` table.
func RevokeJTI(jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	ctx := context.Background()
	if RedisClient != nil {
		return RedisClient.Set(ctx, "jwt:blacklist:"+jti, "1", ttl).Err()
	}
	if database.DB != nil {
		res := database.DB.Exec("INSERT INTO revoked_tokens (id, revoked_at) VALUES (?, ?) ON DUPLICATE KEY UPDATE revoked_at = VALUES(revoked_at)", jti, time.Now())
		return res.Error
	}
	return errors.New("no revocation store configured")
}

// generateJTI creates a URL-safe random identifier used as JWT ID
func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = hex[int(b[i])%len(hex)]
	}
	return string(out), nil
}

// GetUserID returns the authenticated user id placed in context by the auth middleware.
func GetUserID(r *http.Request) (uint, bool) {
	v := r.Context().Value(UserIDKey)
	id, ok := v.(uint)
	return id, ok
}

// GetDeviceID returns the device scope for completion state. The client
// sends X-Device-ID; absent or blank falls back to "web" so browser clients
// without the header share one bucket per user, matching the original
// per-browser storage model.
func GetDeviceID(r *http.Request) string {
	if v, ok := r.Context().Value(DeviceIDKey).(string); ok && v != "" {
		return v
	}
	if h := strings.TrimSpace(r.Header.Get("X-Device-ID")); h != "" {
		return h
	}
	return "web"
}

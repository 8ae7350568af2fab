package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"
)

// RedisClient is an optional shared Redis client used for token revocation.
// It is nil when REDIS_ADDR is not configured; revocation checks are then
// skipped (tokens stay valid until expiry).
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
	if err := rc.Ping(context.Background()).Err(); err != nil {
		fmt.Printf("warning: redis ping failed: %v\n", err)
		return
	}
	RedisClient = rc
}

type contextKey string

const UserIDKey = contextKey("userID")
const TenantIDKey = contextKey("tenantID")
const ManagerIDKey = contextKey("managerID")
const UserRoleKey = contextKey("userRole")
const RequestIDKey = contextKey("requestID")

func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWT issues an access token for a customer or a manager. The tenant
// id travels in the token so handlers never trust a client-supplied tenant.
func GenerateJWT(id uint, tenantID uint, role string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}

	var expTime time.Duration
	if role == "manager" {
		expTime = time.Hour * 6
	} else {
		expTime = time.Hour * 24
	}

	now := time.Now()
	jti, err := generateJTI(16)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"id":        id,
		"tenant_id": tenantID,
		"role":      role,
		"exp":       now.Add(expTime).Unix(),
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
		"jti":       jti,
		"aud":       os.Getenv("JWT_AUD"),
		"iss":       os.Getenv("JWT_ISS"),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken validates signature and registered claims and checks
// the jti against the Redis revocation store when configured.
func ValidateAccessToken(tokenString string) (*jwt.Token, jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, nil, errors.New("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, errors.New("token expired")
		}
		return nil, nil, errors.New("invalid token")
	}
	if !token.Valid {
		return nil, nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil, errors.New("invalid claims")
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" && RedisClient != nil {
		revoked, err := RedisClient.Exists(context.Background(), "revoked:"+jti).Result()
		if err == nil && revoked > 0 {
			return nil, nil, errors.New("token revoked")
		}
	}

	return token, claims, nil
}

// RevokeToken marks a token's jti as revoked until its natural expiry.
func RevokeToken(claims jwt.MapClaims) error {
	if RedisClient == nil {
		return errors.New("revocation store not configured")
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return errors.New("token has no jti")
	}
	ttl := time.Hour * 24
	if exp, ok := claims["exp"].(float64); ok {
		if until := time.Until(time.Unix(int64(exp), 0)); until > 0 {
			ttl = until
		}
	}
	return RedisClient.Set(context.Background(), "revoked:"+jti, "1", ttl).Err()
}

func uintClaim(claims jwt.MapClaims, key string) uint {
	switch v := claims[key].(type) {
	case float64:
		return uint(v)
	case int:
		return uint(v)
	case string:
		var n uint
		_, _ = fmt.Sscanf(v, "%d", &n)
		return n
	}
	return 0
}

// UintClaim extracts a numeric claim, tolerating JSON number decoding.
func UintClaim(claims jwt.MapClaims, key string) uint {
	return uintClaim(claims, key)
}

// GetUserID reads the authenticated customer id from the request context.
func GetUserID(r *http.Request) (uint, bool) {
	v, ok := r.Context().Value(UserIDKey).(uint)
	return v, ok
}

// GetManagerID reads the authenticated manager id from the request context.
func GetManagerID(r *http.Request) (uint, bool) {
	v, ok := r.Context().Value(ManagerIDKey).(uint)
	return v, ok
}

// GetTenantID reads the tenant scope set by the auth middleware.
func GetTenantID(r *http.Request) (uint, bool) {
	v, ok := r.Context().Value(TenantIDKey).(uint)
	return v, ok
}

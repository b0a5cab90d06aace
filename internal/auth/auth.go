// Package auth issues and validates API keys for the GreenPrompt REST API.
package auth

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/saad2134/greenprompt/internal/db"
)

const keyPrefix = "gp_"

// HashKey returns the hex SHA3-256 digest of key+salt. The digest is stable
// across processes, so it doubles as the stored lookup key.
func HashKey(key, salt string) string {
	sum := sha3.Sum256([]byte(key + salt))
	return hex.EncodeToString(sum[:])
}

// FingerprintPrompt derives a stable content fingerprint for a prompt,
// used as the dedup/history key for persisted runs.
func FingerprintPrompt(prompt string) string {
	sum := sha3.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// GenerateKey creates a new random API key in the form gp_<32 hex chars>.
func GenerateKey() string {
	u := uuid.New()
	return keyPrefix + hex.EncodeToString(u[:])
}

// CreateKey generates, hashes, and stores a new API key for an owner.
// Returns the plain key — the only time it is ever available.
func CreateKey(ctx context.Context, database *db.DB, owner, name, salt string, rateLimit int) (string, error) {
	key := GenerateKey()
	_, err := database.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, owner, name, rate_limit) VALUES (?,?,?,?)`,
		HashKey(key, salt), owner, name, rateLimit,
	)
	if err != nil {
		return "", fmt.Errorf("auth.CreateKey: %w", err)
	}
	return key, nil
}

// RevokeKey marks a key inactive by row ID.
func RevokeKey(ctx context.Context, database *db.DB, id int) error {
	res, err := database.ExecContext(ctx, `UPDATE api_keys SET is_active=0 WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("auth.RevokeKey: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("auth.RevokeKey: key %d not found", id)
	}
	return nil
}

// ListKeys returns all stored keys (hashes excluded from JSON output).
func ListKeys(ctx context.Context, database *db.DB) ([]db.APIKey, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT id, key_hash, owner, name, is_active, rate_limit, created_at, last_used_at
		 FROM api_keys ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("auth.ListKeys: %w", err)
	}
	defer rows.Close()

	var keys []db.APIKey
	for rows.Next() {
		var k db.APIKey
		if err := rows.Scan(&k.ID, &k.KeyHash, &k.Owner, &k.Name, &k.IsActive,
			&k.RateLimit, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return nil, fmt.Errorf("auth.ListKeys: scan: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Resolve validates a raw bearer key and returns the matching credential.
// Every failure mode returns the same error so callers cannot distinguish
// missing, malformed, unknown, and revoked keys.
func Resolve(ctx context.Context, database *db.DB, rawKey, salt string) (*db.APIKey, error) {
	unauthorized := fmt.Errorf("auth.Resolve: unauthorized")
	if rawKey == "" {
		return nil, unauthorized
	}

	var k db.APIKey
	err := database.QueryRowContext(ctx,
		`SELECT id, key_hash, owner, name, is_active, rate_limit, created_at, last_used_at
		 FROM api_keys WHERE key_hash=?`, HashKey(rawKey, salt),
	).Scan(&k.ID, &k.KeyHash, &k.Owner, &k.Name, &k.IsActive, &k.RateLimit, &k.CreatedAt, &k.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, unauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("auth.Resolve: query: %w", err)
	}
	if !k.IsActive {
		return nil, unauthorized
	}

	k.LastUsedAt = sql.NullTime{Time: time.Now(), Valid: true}
	_, _ = database.ExecContext(ctx, `UPDATE api_keys SET last_used_at=? WHERE id=?`, k.LastUsedAt.Time, k.ID)
	return &k, nil
}

// ClientLimiter rate-limits requests per client key.
type ClientLimiter interface {
	Allow(clientKey string, perMinute int) bool
}

// RequireAPIKey is middleware that validates a Bearer token from the
// Authorization header and enforces the key's per-minute rate limit.
// All authentication failures produce an identical 401 response.
func RequireAPIKey(database *db.DB, salt string, rl ClientLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}

		key, err := Resolve(r.Context(), database, token, salt)
		if err != nil {
			http.Error(w, `{"success":false,"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		if rl != nil && !rl.Allow(key.KeyHash, key.RateLimit) {
			http.Error(w, `{"success":false,"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyOwner, key.Owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerFromContext extracts the authenticated owner identity from the request context.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(contextKeyOwner).(string)
	return owner
}

type contextKey int

const contextKeyOwner contextKey = iota

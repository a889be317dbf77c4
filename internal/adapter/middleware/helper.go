package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"p2p-backoffice/pkg/id"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

func recordKey(method, route, operatorID, requestID string) string {
	return strings.Join([]string{"idemp:bo", strings.ToLower(method), route, operatorID, requestID}, ":")
}

var reUUID = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)

// validRequestID accepts a lowercase UUID or a 32-char hex id.
func validRequestID(s string) bool {
	s = strings.TrimSpace(s)
	return reUUID.MatchString(s) || id.IsID32(s)
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with
// an explicit zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// record is what we keep per request key.
type record struct {
	Pending   bool      `json:"pending"`
	Status    int       `json:"status"`
	Body      []byte    `json:"body"`
	BodyHash  string    `json:"body_hash"`
	RequestID string    `json:"request_id"`
	RequestAt int64     `json:"request_at_ms"`
	StoredAt  time.Time `json:"stored_at"`
}

func reserve(ctx context.Context, rdb *redis.Client, key string, r record) (bool, error) {
	payload, _ := json.Marshal(r)
	return rdb.SetNX(ctx, key, payload, pendingTTL).Result()
}

func load(ctx context.Context, rdb *redis.Client, key string) (record, error) {
	var r record
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(v, &r)
	return r, err
}

func commit(ctx context.Context, rdb *redis.Client, key string, r record, ttl time.Duration) error {
	payload, _ := json.Marshal(r)
	return rdb.Set(ctx, key, payload, ttl).Err()
}

package middleware

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"
)

func Test_recordKey(t *testing.T) {
	k := recordKey("POST", "/disbursements/:disbursement_id/process", strings.Repeat("b", 32), strings.Repeat("a", 32))
	want := "idemp:bo:post:/disbursements/:disbursement_id/process:" + strings.Repeat("b", 32) + ":" + strings.Repeat("a", 32)
	if k != want {
		t.Fatalf("recordKey = %q, want %q", k, want)
	}
}

func Test_validRequestID(t *testing.T) {
	for _, s := range []string{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		strings.Repeat("a", 32),
	} {
		if !validRequestID(s) {
			t.Fatalf("should accept %q", s)
		}
	}
	for _, s := range []string{
		"",
		strings.Repeat("A", 32),
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",
		"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88",
		"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88",
	} {
		if validRequestID(s) {
			t.Fatalf("should reject %q", s)
		}
	}
}

func Test_parseRequestAt(t *testing.T) {
	sec := time.Now().UTC().Unix()
	ts, err := parseRequestAt(strconv.FormatInt(sec, 10))
	if err != nil || !ts.Equal(time.Unix(sec, 0)) {
		t.Fatalf("epoch seconds: %v %v", ts, err)
	}

	ms := time.Now().UTC().UnixMilli()
	ts, err = parseRequestAt(strconv.FormatInt(ms, 10))
	if err != nil || !ts.Equal(time.UnixMilli(ms)) {
		t.Fatalf("epoch millis: %v %v", ts, err)
	}

	ts, err = parseRequestAt("2025-09-05T10:00:00+07:00")
	if err != nil || !ts.Equal(time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339: %v %v", ts, err)
	}

	for _, raw := range []string{"", "not-a-time", "2025-09-05T10:00:00", "1736123456abc"} {
		if _, err := parseRequestAt(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func Test_reserveLoadCommit(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	key := recordKey("POST", "/x", strings.Repeat("b", 32), strings.Repeat("a", 32))

	ok, err := reserve(ctx, rdb, key, record{Pending: true, BodyHash: "h"})
	if err != nil || !ok {
		t.Fatalf("reserve 1: %v %v", ok, err)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > pendingTTL {
		t.Fatalf("pending ttl = %v", ttl)
	}
	ok, err = reserve(ctx, rdb, key, record{Pending: true})
	if err != nil || ok {
		t.Fatalf("reserve 2 should lose: %v %v", ok, err)
	}

	if err := commit(ctx, rdb, key, record{Status: 201, Body: []byte(`{}`), BodyHash: "h"}, 5*time.Second); err != nil {
		t.Fatalf("commit: %v", err)
	}
	got, err := load(ctx, rdb, key)
	if err != nil || got.Pending || got.Status != 201 || got.BodyHash != "h" {
		t.Fatalf("load: %+v %v", got, err)
	}
}

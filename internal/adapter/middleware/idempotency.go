package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"p2p-backoffice/internal/infrastructure/logger"
	"p2p-backoffice/pkg/id"
)

const (
	HeaderRequestID  = "Ax-Request-Id"
	HeaderRequestAt  = "Ax-Request-At"
	HeaderOperatorID = "Ax-Operator-Id"

	// held while the handler runs
	pendingTTL   = 60 * time.Second
	maxClockSkew = 10 * time.Minute
)

type capture struct {
	w      http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (c *capture) Header() http.Header { return c.w.Header() }

func (c *capture) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.w.Write(b)
}

func (c *capture) WriteHeader(code int) { c.status = code; c.w.WriteHeader(code) }

func reject(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]any{"success": false, "error": msg})
}

// Idempotency replays the stored response for a repeated
// (method, route, operator, request id). Server errors are not stored so the
// caller may retry them.
func Idempotency(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	log = logger.OrNop(log)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return reject(c, http.StatusBadRequest, "missing "+HeaderRequestID)
			}
			if !validRequestID(reqID) {
				return reject(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return reject(c, http.StatusBadRequest, err.Error())
			}
			now := nowUTC()
			if reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
				return reject(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}
			operator := strings.TrimSpace(req.Header.Get(HeaderOperatorID))
			if operator == "" {
				return reject(c, http.StatusBadRequest, "missing "+HeaderOperatorID)
			}
			if !id.IsID32(operator) {
				return reject(c, http.StatusBadRequest, "invalid "+HeaderOperatorID)
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)

			key := recordKey(req.Method, c.Path(), operator, reqID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			fresh, err := reserve(ctx, rdb, key, record{
				Pending:   true,
				BodyHash:  hash,
				RequestID: reqID,
				RequestAt: reqAt.UnixMilli(),
				StoredAt:  now,
			})
			if err != nil {
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !fresh {
				prev, err := load(ctx, rdb, key)
				if err != nil {
					log.Warn("idempotency record unreadable", zap.String("key", key), zap.Error(err))
				}
				if prev.BodyHash != "" && prev.BodyHash != hash {
					return reject(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				}
				if !prev.Pending && prev.Status != 0 && len(prev.Body) > 0 {
					return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Body)
				}
				return reject(c, http.StatusConflict, "request is already in progress")
			}

			rec := &capture{w: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			if rec.status >= http.StatusInternalServerError {
				if err := rdb.Del(context.Background(), key).Err(); err != nil {
					log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			if err := commit(context.Background(), rdb, key, record{
				Status:    rec.status,
				Body:      rec.buf.Bytes(),
				BodyHash:  hash,
				RequestID: reqID,
				RequestAt: reqAt.UnixMilli(),
				StoredAt:  nowUTC(),
			}, ttl); err != nil {
				log.Warn("idempotency commit failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

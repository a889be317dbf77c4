package mirror

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"p2p-backoffice/internal/domain/mirror"
	"p2p-backoffice/internal/infrastructure/logger"
	"p2p-backoffice/internal/infrastructure/metrics"
)

// Field maps the first present source path onto a target column.
type Field struct {
	Target    string
	Sources   []string
	Transform Transform
}

func (f Field) value(doc mirror.Document) (any, error) {
	raw, _ := doc.First(f.Sources...)
	if f.Transform == nil {
		return raw, nil
	}
	return f.Transform(raw)
}

// Schema describes how one kind of external document lands in one table.
type Schema struct {
	Name   string
	Table  string
	Key    Field
	Fields []Field

	// Filter drops documents before any lookup; dropped ones count as Ignored.
	Filter func(doc mirror.Document) bool
	// Enrich may add derived columns or reject the document.
	Enrich func(ctx context.Context, doc mirror.Document, row map[string]any, now time.Time) error
	// OnCreate runs only for rows about to be inserted.
	OnCreate func(row map[string]any, now time.Time)

	SyncColumn string
	// InsertOnly leaves existing rows untouched.
	InsertOnly bool
}

type Skipped struct {
	Index      int    `json:"index"`
	ExternalID string `json:"external_id,omitempty"`
	Reason     string `json:"reason"`
}

type Result struct {
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Unchanged int       `json:"unchanged"`
	Ignored   int       `json:"ignored"`
	Skipped   []Skipped `json:"skipped"`
}

type outcome string

const (
	outcomeCreated   outcome = "created"
	outcomeUpdated   outcome = "updated"
	outcomeUnchanged outcome = "unchanged"
	outcomeIgnored   outcome = "ignored"
	outcomeSkipped   outcome = "skipped"
)

// Reconciler upserts documents one at a time; there is no batch transaction.
type Reconciler struct {
	store mirror.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewReconciler(store mirror.Store, log *zap.Logger) *Reconciler {
	return &Reconciler{store: store, log: logger.OrNop(log), now: time.Now}
}

// WithClock fixes the pass time.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

func (r *Reconciler) Reconcile(ctx context.Context, s Schema, docs []mirror.Document) Result {
	res := Result{Skipped: []Skipped{}}
	now := r.now().UTC()

	for i, doc := range docs {
		if ctx.Err() != nil {
			res.Skipped = append(res.Skipped, Skipped{Index: i, Reason: ctx.Err().Error()})
			continue
		}
		key, out, err := r.one(ctx, s, doc, now)
		switch {
		case err != nil:
			res.Skipped = append(res.Skipped, Skipped{Index: i, ExternalID: key, Reason: err.Error()})
			r.log.Warn("mirror document skipped",
				zap.String("schema", s.Name), zap.Int("index", i), zap.String("external_id", key), zap.Error(err))
			out = outcomeSkipped
		case out == outcomeCreated:
			res.Created++
		case out == outcomeUpdated:
			res.Updated++
		case out == outcomeUnchanged:
			res.Unchanged++
		case out == outcomeIgnored:
			res.Ignored++
		}
		metrics.MirrorDocuments.WithLabelValues(s.Name, string(out)).Inc()
	}

	r.log.Info("mirror pass finished",
		zap.String("schema", s.Name),
		zap.Int("created", res.Created), zap.Int("updated", res.Updated),
		zap.Int("unchanged", res.Unchanged), zap.Int("ignored", res.Ignored),
		zap.Int("skipped", len(res.Skipped)))
	return res
}

func (r *Reconciler) one(ctx context.Context, s Schema, doc mirror.Document, now time.Time) (key string, out outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	if s.Filter != nil && !s.Filter(doc) {
		return "", outcomeIgnored, nil
	}

	rawKey, err := s.Key.value(doc)
	if err != nil {
		return "", "", err
	}
	key, _ = rawKey.(string)
	if key == "" {
		return "", "", mirror.ErrMissingKey
	}

	exists, err := r.store.Exists(ctx, s.Table, s.Key.Target, key)
	if err != nil {
		return key, "", err
	}
	if exists && s.InsertOnly {
		return key, outcomeUnchanged, nil
	}

	row := make(map[string]any, len(s.Fields)+2)
	for _, f := range s.Fields {
		v, err := f.value(doc)
		if err != nil {
			return key, "", fmt.Errorf("%s: %w", f.Target, err)
		}
		row[f.Target] = v
	}
	row[s.Key.Target] = key
	if s.SyncColumn != "" {
		row[s.SyncColumn] = now
	}
	if s.Enrich != nil {
		if err := s.Enrich(ctx, doc, row, now); err != nil {
			return key, "", err
		}
	}

	if exists {
		if err := r.store.Update(ctx, s.Table, s.Key.Target, key, row); err != nil {
			return key, "", err
		}
		return key, outcomeUpdated, nil
	}
	if s.OnCreate != nil {
		s.OnCreate(row, now)
	}
	if err := r.store.Insert(ctx, s.Table, row); err != nil {
		return key, "", err
	}
	return key, outcomeCreated, nil
}

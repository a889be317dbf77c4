package mysql

import (
	"gorm.io/gorm"

	"p2p-backoffice/pkg/page"
)

const (
	DefaultPageSize = page.DefaultSize
	MaxPageSize     = page.MaxSize
)

// ClampPage normalises a limit/offset pair.
func ClampPage(limit, offset int) (int, int) { return page.Clamp(limit, offset) }

// Paginate is a gorm scope applying clamped limit/offset.
func Paginate(limit, offset int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		l, o := page.Clamp(limit, offset)
		return db.Offset(o).Limit(l)
	}
}

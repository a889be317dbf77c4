package page

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Clamp normalises a limit/offset pair.
func Clamp(limit, offset int) (int, int) {
	switch {
	case limit > MaxSize:
		limit = MaxSize
	case limit <= 0:
		limit = DefaultSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

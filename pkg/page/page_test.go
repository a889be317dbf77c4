package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	cases := []struct{ limit, offset, wantL, wantO int }{
		{0, 0, DefaultSize, 0},
		{-1, -5, DefaultSize, 0},
		{500, 10, MaxSize, 10},
		{30, 60, 30, 60},
	}
	for _, c := range cases {
		l, o := Clamp(c.limit, c.offset)
		assert.Equal(t, c.wantL, l, "limit for %d", c.limit)
		assert.Equal(t, c.wantO, o, "offset for %d", c.offset)
	}
}

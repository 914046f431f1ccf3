package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		total  int64
		size   int
		number int
		pages  int
	}{
		{"empty input", "", 12, 5, 1, 3},
		{"second page", "2", 12, 5, 2, 3},
		{"zero", "0", 12, 5, 1, 3},
		{"negative", "-4", 12, 5, 1, 3},
		{"not a number", "abc", 12, 5, 1, 3},
		{"past the end", "999", 10, 5, 2, 2},
		{"exact multiple", "2", 10, 5, 2, 2},
		{"no rows", "3", 0, 5, 1, 1},
		{"padded", " 2 ", 6, 3, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.raw, tt.total, tt.size)
			assert.Equal(t, tt.number, p.Number)
			assert.Equal(t, tt.pages, p.NumPages)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestPageNavigation(t *testing.T) {
	p := New("2", 7, 3)

	assert.Equal(t, 3, p.Offset())
	assert.True(t, p.HasPrevious())
	assert.True(t, p.HasNext())
	assert.True(t, p.HasOtherPages())
	assert.Equal(t, 1, p.PreviousNumber())
	assert.Equal(t, 3, p.NextNumber())
	assert.Equal(t, []int{1, 2, 3}, p.Numbers())

	single := New("1", 2, 3)
	assert.False(t, single.HasOtherPages())
	assert.False(t, single.HasNext())
	assert.Equal(t, 0, single.Offset())
}

func TestNewClampsSize(t *testing.T) {
	p := New("1", 4, 0)
	assert.Equal(t, 1, p.Size)
	assert.Equal(t, 4, p.NumPages)
}

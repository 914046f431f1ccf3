// Package pagination resolves user supplied page numbers against a result set.
// Bad input never produces an error: non-numeric or non-positive numbers resolve to
// the first page and numbers past the end resolve to the last page.
package pagination

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

type Page struct {
	Number   int   `json:"number"`
	Size     int   `json:"size"`
	Total    int64 `json:"total"`
	NumPages int   `json:"num_pages"`
}

// New resolves raw (usually the "page" query parameter) for a result set of total rows.
func New(raw string, total int64, size int) Page {
	if size < 1 {
		size = 1
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages == 0 {
		numPages = 1
	}

	number := ParseNumber(raw)
	switch {
	case number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}

	return Page{Number: number, Size: size, Total: total, NumPages: numPages}
}

// ParseNumber returns the page number in raw, or 0 when raw is not an integer.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Scope limits a query to the rows of this page.
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Size)
}

func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) HasOtherPages() bool { return p.NumPages > 1 }

func (p Page) PreviousNumber() int { return p.Number - 1 }

func (p Page) NextNumber() int { return p.Number + 1 }

// Numbers lists every page number, for rendering page links.
func (p Page) Numbers() []int {
	nums := make([]int, p.NumPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

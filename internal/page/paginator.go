// Package page slices filtered file lists into pages and computes the
// compressed page-number strip shown by list views.
package page

import (
	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/pkg/utils"
)

// Ellipsis is the sentinel PageNumbers emits where a run of page numbers
// is collapsed.
const Ellipsis = -1

// DefaultPageSize is used when no explicit size is configured.
const DefaultPageSize = 100

// PageSizeOptions are the sizes a client may pick from.
var PageSizeOptions = []int{25, 50, 100, 250, 500}

// Page is one window into a filtered list.
type Page struct {
	Files      []models.File `json:"files"`
	Number     int           `json:"number"`
	Size       int           `json:"size"`
	TotalItems int           `json:"total_items"`
	TotalPages int           `json:"total_pages"`
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Paginate slices files into the requested page. The page count never
// drops below one, so an empty list still yields page 1 of 1 with no
// files. Out-of-range page numbers clamp to the nearest valid page
// rather than erroring.
func Paginate(files []models.File, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := utils.CeilDiv(len(files), size)
	if totalPages < 1 {
		totalPages = 1
	}
	number = utils.ClampInt(number, 1, totalPages)

	start := (number - 1) * size
	end := start + size
	if start > len(files) {
		start = len(files)
	}
	if end > len(files) {
		end = len(files)
	}

	out := make([]models.File, end-start)
	copy(out, files[start:end])
	return Page{
		Files:      out,
		Number:     number,
		Size:       size,
		TotalItems: len(files),
		TotalPages: totalPages,
	}
}

// PageNumbers returns the compressed strip of page numbers around
// current. Short ranges are returned whole; longer ones keep the first
// and last page, a one-page window around current, and Ellipsis markers
// for the collapsed runs.
func PageNumbers(current, total int) []int {
	if total < 1 {
		total = 1
	}
	current = utils.ClampInt(current, 1, total)

	if total <= 7 {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}

	out := []int{1}
	if current > 4 {
		out = append(out, Ellipsis)
	}
	lo := current - 1
	if lo < 2 {
		lo = 2
	}
	hi := current + 1
	if hi > total-1 {
		hi = total - 1
	}
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	if current < total-3 {
		out = append(out, Ellipsis)
	}
	return append(out, total)
}

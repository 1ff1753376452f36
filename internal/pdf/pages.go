package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePageRange parses a page range string like "1-5" or "1,3,5" into an
// ascending, deduplicated list of 1-based page numbers. An empty string
// means all pages and returns nil.
func ParsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		part = strings.TrimSpace(part)
		tokenPages, err := parseRangeToken(part)
		if err != nil {
			return nil, err
		}
		for _, p := range tokenPages {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}
	sort.Ints(pages)
	return pages, nil
}

// parseRangeToken parses either a single page token (e.g. "3") or a range
// token (e.g. "1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start < 1 || end < 1 {
			return nil, fmt.Errorf("page numbers must be positive: %s", part)
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	if page < 1 {
		return nil, fmt.Errorf("page number must be positive: %d", page)
	}
	return []int{page}, nil
}

// SelectPages resolves a parsed page range against a document's page
// count, returning ascending 0-based indices. A nil range selects every
// page; out-of-range pages are an error.
func SelectPages(pageCount int, pages []int) ([]int, error) {
	if pages == nil {
		out := make([]int, pageCount)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	out := make([]int, 0, len(pages))
	for _, p := range pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range: document has %d pages", p, pageCount)
		}
		out = append(out, p-1)
	}
	return out, nil
}

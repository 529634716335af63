package listing

import "strconv"

// VisibleWindow is the page count shown without ellipses.
const VisibleWindow = 5

// PageLabel is either a page number or an ellipsis gap.
type PageLabel struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

func (l PageLabel) String() string {
	if l.Ellipsis {
		return "..."
	}
	return strconv.Itoa(l.Page)
}

var gap = PageLabel{Ellipsis: true}

// PageLabels builds the compact page control sequence:
//
//	total <= 5           1 2 3 4 5
//	current <= 3         1 2 3 4 ... total
//	current >= total-2   1 ... total-3 total-2 total-1 total
//	otherwise            1 ... current-1 current current+1 ... total
func PageLabels(current, total int) []PageLabel {
	if total <= 0 {
		return nil
	}
	if total <= VisibleWindow {
		return pages(1, total)
	}

	switch {
	case current <= 3:
		return append(pages(1, 4), gap, PageLabel{Page: total})
	case current >= total-2:
		return append([]PageLabel{{Page: 1}, gap}, pages(total-3, total)...)
	default:
		out := []PageLabel{{Page: 1}, gap}
		out = append(out, pages(current-1, current+1)...)
		return append(out, gap, PageLabel{Page: total})
	}
}

func pages(from, to int) []PageLabel {
	out := make([]PageLabel, 0, to-from+1)
	for page := from; page <= to; page++ {
		out = append(out, PageLabel{Page: page})
	}
	return out
}

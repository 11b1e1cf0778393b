package layout

// Placement positions one item on one page. Coordinates are the item's
// top-left corner in points from the page's top-left corner.
type Placement struct {
	Index int // position in the input
	Page  int
	X, Y  float64
	W, H  float64
}

// Result is the output of Pack.
type Result struct {
	Placements []Placement
	Pages      int
}

// OnPage returns the placements on page p in input order.
func (r Result) OnPage(p int) []Placement {
	var out []Placement
	for _, pl := range r.Placements {
		if pl.Page == p {
			out = append(out, pl)
		}
	}
	return out
}

// Pack places items left to right in rows, top to bottom, one page after
// another, in input order. It is a single greedy pass with no backtracking.
//
// A new page is started when no page is open yet, or when the item overflows
// both the remaining row width and the remaining page height. Independently
// of that, an item that overflows the row width wraps to a new row below the
// tallest item of the current row. Items are placed at (offX+spacing, offY)
// and the row cursor advances by spacing plus the item width.
func Pack(items []Size, spec PageSpec) Result {
	var (
		res     Result
		page    = -1
		offX    = spec.Margin
		offY    = spec.Margin
		rowMaxH = -1.0
		limitW  = spec.Size.W - spec.Margin
		limitH  = spec.Size.H - spec.Margin
		sp      = spec.Spacing
	)

	for i, it := range items {
		overflowW := offX+sp+it.W > limitW
		overflowH := offY+rowMaxH+sp+it.H > limitH
		if page < 0 || (overflowW && overflowH) {
			page++
			offX, offY, rowMaxH = spec.Margin, spec.Margin, -1
		}
		if offX+sp+it.W > limitW && rowMaxH >= 0 {
			offX = spec.Margin
			offY = offY + rowMaxH + sp
			rowMaxH = -1
		}

		res.Placements = append(res.Placements, Placement{
			Index: i,
			Page:  page,
			X:     offX + sp,
			Y:     offY,
			W:     it.W,
			H:     it.H,
		})
		rowMaxH = max(rowMaxH, it.H)
		offX = offX + sp + it.W
	}
	res.Pages = page + 1
	return res
}

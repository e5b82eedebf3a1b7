package signal

// TickSpacing picks the x-tick spacing for a plot of rows samples.
//
// The ranges are open intervals checked in order, so the boundary counts
// 500, 1000 and 4000 (and anything from 7000 up) get the 1000 default.
func TickSpacing(rows int) int {
	spacing := 1000
	if rows > 4000 && rows < 7000 {
		spacing = 500
	} else if rows < 4000 && rows > 1000 {
		spacing = 200
	} else if rows < 1000 && rows > 500 {
		spacing = 100
	} else if rows < 500 {
		spacing = 50
	}
	return spacing
}

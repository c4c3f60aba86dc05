package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderShare renders value as a fraction of total, like [████░░░░] 45%.
// The bar turns yellow past half and red past two thirds, since a larger
// share means a heavier load.
func RenderShare(value, total, width int) string {
	if width < 2 {
		width = 2
	}
	var pct float64
	if total > 0 && value > 0 {
		pct = float64(value) / float64(total)
	}
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct > 0.66 {
		style = StyleRed
	} else if pct > 0.5 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

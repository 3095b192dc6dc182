package msg

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar counts finished work items, e.g. files handed to the formatter.
type ProgressBar struct {
	Total      int
	Current    int
	Indent     int
	Start      time.Time
	W          io.Writer
	lastPrint  time.Time
	throbIndex int
}

var throbbers = []rune{'|', '/', '-', '\\'}

func NewProgressBar(total int, indent int, w io.Writer) *ProgressBar {
	return &ProgressBar{
		Total:  total,
		Indent: indent,
		Start:  time.Now(),
		W:      w,
	}
}

// Add advances the bar by n items, redrawing at most every 40ms.
func (pb *ProgressBar) Add(n int) {
	pb.Current += n

	if time.Since(pb.lastPrint) > 40*time.Millisecond {
		pb.print(false)
		pb.lastPrint = time.Now()
	}
}

func (pb *ProgressBar) print(finish bool) {
	width := 40
	percent := float64(pb.Current) / float64(max(pb.Total, 1))
	if finish {
		percent = 1
	}

	filled := min(int(percent*float64(width)), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("-", width-filled)

	throb := throbbers[pb.throbIndex%len(throbbers)]
	pb.throbIndex++
	if finish {
		throb = ' '
	}

	fmt.Fprintf(pb.W, "\r%s%6.f%% [%s] %d/%d %c",
		strings.Repeat(" ", pb.Indent),
		percent*100,
		bar,
		pb.Current,
		pb.Total,
		throb,
	)
}

func (pb *ProgressBar) Finish() {
	pb.print(true)
	fmt.Fprintln(pb.W)
}

package sticky

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Cascade parameters for NextPlacement.
const (
	placementBase      = 100 // origin of the first window
	placementStep      = 20  // diagonal offset between cascaded windows
	placementPerColumn = 10  // windows per cascade before wrapping
	placementColumn    = 250 // horizontal shift applied on each wrap
	placementMax       = 50  // candidates tried before falling back to DefaultFrame
	placementSize      = 250
)

var frameNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

type point struct{ x, y int }

// FrameOrigin extracts the window origin from a frame string such as
// "{{100, 100}, {250, 250}}". ok is false when the frame has fewer than two numbers.
func FrameOrigin(frame string) (x, y int, ok bool) {
	nums := frameNumber.FindAllString(frame, 2)
	if len(nums) < 2 {
		return 0, 0, false
	}
	fx, err := strconv.ParseFloat(nums[0], 64)
	if err != nil {
		return 0, 0, false
	}
	fy, err := strconv.ParseFloat(nums[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return int(math.Round(fx)), int(math.Round(fy)), true
}

// FormatFrame renders a frame string in the Stickies format.
func FormatFrame(x, y, w, h int) string {
	return fmt.Sprintf("{{%d, %d}, {%d, %d}}", x, y, w, h)
}

// NextPlacement picks a frame for a new note given the frames of existing notes.
//
// Candidates cascade from (100, 100) in 20px diagonal steps. After 10 steps the
// cascade wraps to a new column 250px to the right, starting again at y=100.
// The first candidate whose origin is not used by an existing frame wins. If
// the first 50 candidates are all taken, DefaultFrame is returned.
func NextPlacement(existing []string) string {
	used := make(map[point]bool, len(existing))
	for _, f := range existing {
		if x, y, ok := FrameOrigin(f); ok {
			used[point{x, y}] = true
		}
	}

	for i := 0; i < placementMax; i++ {
		step := i % placementPerColumn
		p := point{
			x: placementBase + step*placementStep + (i/placementPerColumn)*placementColumn,
			y: placementBase + step*placementStep,
		}
		if !used[p] {
			return FormatFrame(p.x, p.y, placementSize, placementSize)
		}
	}
	return DefaultFrame
}

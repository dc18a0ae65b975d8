package export

import (
	"math"
	"regexp"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// FileName builds the export file name convention
// Saati_Report_<user>_<isoDate>.<ext>, with whitespace in the user's name
// collapsed to underscores.
func FileName(userName string, ext string, now time.Time) string {
	return "Saati_Report_" + whitespace.ReplaceAllString(userName, "_") + "_" + now.Format("2006-01-02") + "." + ext
}

func minutesToDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}

// PageCount is the pagination contract handed to the paginated-document
// renderer: the captured canvas is scaled to the page width and sliced into
// however many pages its scaled height spans.
func PageCount(canvasWidth, canvasHeight, imgWidth, pageHeight float64) int {
	if canvasWidth <= 0 || canvasHeight <= 0 || imgWidth <= 0 || pageHeight <= 0 {
		return 0
	}
	imgHeight := imgWidth / (canvasWidth / canvasHeight)
	return int(math.Ceil(imgHeight / pageHeight))
}

// ScaledHeight returns the image height used by PageCount, exposed so the
// renderer positions page slices with the same rounding.
func ScaledHeight(canvasWidth, canvasHeight, imgWidth float64) float64 {
	if canvasWidth <= 0 || canvasHeight <= 0 {
		return 0
	}
	return imgWidth / (canvasWidth / canvasHeight)
}

package notes

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreatedLayout is the display layout of Note.Created.
const CreatedLayout = "January 2, 2006"

// DatesSeparator joins the dates found in a note's content.
const DatesSeparator = " , "

var datePattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)

// HighlightDates returns every d/m/yyyy-like substring of content joined by
// DatesSeparator, or "" when there is none.
func HighlightDates(content string) string {
	matches := datePattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.Join(matches, DatesSeparator)
}

func FormatDate(t time.Time) string {
	return t.Format(CreatedLayout)
}

// GenerateKey returns a fresh note id.
func GenerateKey() string {
	return uuid.NewString()
}

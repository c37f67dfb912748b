package billing

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

// DateLayout is the date format used in export object names.
const DateLayout = "2006-01-02"

var objectNameRegex = regexp.MustCompile(`^(.+)-(\d{4}-\d{2}-\d{2})\.json$`)

// ParseObjectName extracts the project and date from "<prefix>/<project>-YYYY-MM-DD.json".
func ParseObjectName(name string) (string, time.Time, error) {
	base := path.Base(name)
	match := objectNameRegex.FindStringSubmatch(base)
	if match == nil {
		return "", time.Time{}, fmt.Errorf("object name %q does not match <project>-YYYY-MM-DD.json", name)
	}
	date, err := time.Parse(DateLayout, match[2])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("object name %q has an invalid date: %w", name, err)
	}
	return match[1], date, nil
}

// ObjectName builds the export object name of a project and day.
func ObjectName(prefix, project string, date time.Time) string {
	return fmt.Sprintf("%s%s-%s.json", prefix, project, date.Format(DateLayout))
}

// ProjectPrefix is the listing prefix covering every export of a project.
// Listings under it can include other projects sharing the prefix, so names
// must still be checked with ParseObjectName.
func ProjectPrefix(prefix, project string) string {
	return prefix + project + "-"
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

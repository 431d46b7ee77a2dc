// slug.go

package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// generateSlug turns a display name into a URL-safe identifier and appends
// the current epoch-millis so near-simultaneous creations of the same name
// still get distinct slugs.
func generateSlug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "&", "and")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	ts := time.Now().UnixMilli()
	if s == "" {
		return strconv.FormatInt(ts, 10)
	}
	return fmt.Sprintf("%s-%d", s, ts)
}

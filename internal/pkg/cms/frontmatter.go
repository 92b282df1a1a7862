package cms

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clawsite/clawsite/app/models"
)

var headingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// splitFrontmatter separates a leading "---" delimited YAML block from the body.
func splitFrontmatter(raw []byte) (map[string]interface{}, string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")

	data := map[string]interface{}{}
	if !strings.HasPrefix(text, "---\n") {
		return data, text, nil
	}

	// Prepending the newline lets an empty block ("---\n---") match too.
	rest := "\n" + text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, "", fmt.Errorf("unterminated frontmatter")
	}
	block := strings.TrimPrefix(rest[:end], "\n")
	body := rest[end+len("\n---"):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}

	if err := yaml.Unmarshal([]byte(block), &data); err != nil {
		return nil, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, body, nil
}

// toPostBase maps frontmatter fields onto a PostBase. fileSlug is used when the
// frontmatter does not name a slug.
func toPostBase(data map[string]interface{}, body, locale, fileSlug string, now time.Time) *PostBase {
	p := &PostBase{
		Locale:           locale,
		ID:               stringField(data, "id"),
		Description:      stringField(data, "description"),
		FeaturedImageURL: stringField(data, "featuredImageUrl"),
		Slug:             normalizeSlug(stringField(data, "slug")),
		Tags:             tagsField(data["tags"]),
		Status:           stringField(data, "status"),
		Visibility:       stringField(data, "visibility"),
		IsPinned:         boolField(data["isPinned"]),
		Content:          body,
		Metadata:         data,
	}
	if p.Slug == "" {
		p.Slug = normalizeSlug(fileSlug)
	}
	if p.Status == "" {
		p.Status = models.PostStatusPublished
	}
	if p.Visibility == "" {
		p.Visibility = models.VisibilityPublic
	}

	p.PublishedAt = now
	if t, ok := timeField(data["publishedAt"]); ok {
		p.PublishedAt = t
	}

	p.Title = stringField(data, "title")
	if p.Title == "" {
		if m := headingPattern.FindStringSubmatch(body); m != nil {
			p.Title = strings.TrimSpace(strings.NewReplacer("*", "", "_", "", "`", "").Replace(m[1]))
		}
	}
	if p.Title == "" {
		parts := strings.Split(p.Slug, "/")
		p.Title = parts[len(parts)-1]
	}
	return p
}

func stringField(data map[string]interface{}, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func boolField(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}

// tagsField accepts "a, b" or a YAML list and returns the comma joined form.
func tagsField(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		names := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				names = append(names, s)
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// timeField reads a date that YAML may hand over as time.Time or as a string.
func timeField(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// normalizeSlug trims surrounding slashes so "/foo/", "foo/" and "foo" compare equal.
func normalizeSlug(slug string) string {
	return strings.Trim(strings.TrimSpace(slug), "/")
}

package cms

import (
	"context"
	"sort"
	"strings"
)

type SidebarItem struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type SidebarSection struct {
	Title string        `json:"title"`
	Items []SidebarItem `json:"items"`
}

// Sidebar groups the local posts of a locale by their top level directory.
// Top level files land in a "General" section listed first.
func (s *LocalSource) Sidebar(ctx context.Context, locale string) ([]SidebarSection, error) {
	posts, err := s.ListAll(ctx, locale)
	if err != nil {
		return nil, err
	}

	general := []SidebarItem{}
	bySection := map[string][]SidebarItem{}
	for _, p := range posts {
		if p.Slug == "" {
			continue
		}
		item := SidebarItem{Title: p.Title, Slug: p.Slug}
		dir, _, nested := strings.Cut(p.Slug, "/")
		if !nested && !s.isDirectory(locale, p.Slug) {
			general = append(general, item)
			continue
		}
		bySection[dir] = append(bySection[dir], item)
	}

	var sections []SidebarSection
	if len(general) > 0 {
		sortItems(general)
		sections = append(sections, SidebarSection{Title: "General", Items: general})
	}

	dirs := make([]string, 0, len(bySection))
	for d := range bySection {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		items := bySection[d]
		sortItems(items)
		sections = append(sections, SidebarSection{Title: sectionTitle(d), Items: items})
	}
	return sections, nil
}

// isDirectory reports whether slug came from <slug>/index.md.
func (s *LocalSource) isDirectory(locale, slug string) bool {
	for _, f := range s.files(locale) {
		if fileSlug(f.rel) == slug {
			return strings.Contains(strings.ReplaceAll(f.rel, "\\", "/"), "/")
		}
	}
	return false
}

func sortItems(items []SidebarItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].Title < items[j].Title })
}

// sectionTitle turns "getting-started" into "Getting Started".
func sectionTitle(dir string) string {
	words := strings.Fields(strings.ReplaceAll(dir, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

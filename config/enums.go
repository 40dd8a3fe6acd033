package config

// Which heading tags are hidden while a show is running.
// ENUM(slide-tag-only, all-tags)
type HideTagsMode int

// HidesAll reports whether every tag on every heading is hidden.
func (m HideTagsMode) HidesAll() bool {
	return m == HideTagsModeAllTags
}

// Package kind maps MIME types to file categories and preview variants.
package kind

import (
	"fmt"
	"strings"
)

// Category is a coarse file category derived from a MIME type.
type Category string

const (
	All      Category = "all"
	Image    Category = "image"
	Video    Category = "video"
	Audio    Category = "audio"
	Document Category = "document"
	Other    Category = "other"
)

// Categories lists the filter values in sidebar order.
var Categories = []Category{All, Image, Video, Audio, Document, Other}

var documentMarkers = []string{"pdf", "text", "word", "sheet"}

// Classify returns the category of mimeType. First matching rule wins;
// every input maps to exactly one category other than All.
func Classify(mimeType string) Category {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return Image
	case strings.HasPrefix(mimeType, "video/"):
		return Video
	case strings.HasPrefix(mimeType, "audio/"):
		return Audio
	case containsAny(mimeType, documentMarkers):
		return Document
	default:
		return Other
	}
}

// ParseCategory validates a filter value. Empty input means All.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return All, nil
	}
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (expected: all|image|video|audio|document|other)", s)
}

func (c Category) String() string { return string(c) }

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

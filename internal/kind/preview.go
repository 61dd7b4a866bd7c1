package kind

import "strings"

// Variant identifies how a file is presented.
type Variant string

const (
	VariantImage    Variant = "image"
	VariantVideo    Variant = "video"
	VariantAudio    Variant = "audio"
	VariantPDF      Variant = "pdf"
	VariantText     Variant = "text"
	VariantOffice   Variant = "office"
	VariantDownload Variant = "download"
)

// Viewer is the outcome of Preview: the variant plus the source it points to.
type Viewer struct {
	Variant Variant
	URL     string
}

var (
	textMarkers   = []string{"text/", "json", "xml", "csv", "html", "css", "javascript", "typescript"}
	officeMarkers = []string{"document", "sheet", "presentation", "officedocument"}
)

// Preview selects a viewer for mimeType. It applies the Classify prefixes and
// splits documents into pdf, text and office variants.
func Preview(mimeType, url string) Viewer {
	v := VariantDownload
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		v = VariantImage
	case strings.HasPrefix(mimeType, "video/"):
		v = VariantVideo
	case strings.HasPrefix(mimeType, "audio/"):
		v = VariantAudio
	case strings.Contains(mimeType, "pdf"):
		v = VariantPDF
	case containsAny(mimeType, officeMarkers):
		// checked before text: openxmlformats types contain "xml"
		v = VariantOffice
	case containsAny(mimeType, textMarkers):
		v = VariantText
	}
	return Viewer{Variant: v, URL: url}
}

// Inline reports whether the variant is rendered natively from the URL.
// Office documents and unknown types are offered as downloads instead.
func (v Viewer) Inline() bool {
	return v.Variant != VariantOffice && v.Variant != VariantDownload
}

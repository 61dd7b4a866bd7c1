package sqlite

import "strings"

type seedFile struct {
	name string
	size int64
	mime string
	url  string
}

// demoFiles — демонстрационный набор для mock mode, в порядке отображения.
var demoFiles = []seedFile{
	// Documents
	{"Design-Brief.pdf", 245_760, "application/pdf", "/pdf-document-preview-mock.jpg"},
	{"Project-Proposal.docx", 156_432, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "/text-document-preview-mock.jpg"},
	{"Budget-Spreadsheet.xlsx", 89_123, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "/text-document-preview-mock.jpg"},
	{"Meeting-Notes.txt", 8_192, "text/plain", "/text-document-preview-mock.jpg"},
	{"Contract-Terms.pdf", 392_847, "application/pdf", "/pdf-document-preview-mock.jpg"},
	// Images
	{"Team-Photo.jpg", 512_000, "image/jpeg", "/image-preview-mock.jpg"},
	{"Logo-Design.png", 234_567, "image/png", "/image-preview-mock.jpg"},
	{"Product-Shot-01.jpg", 1_234_567, "image/jpeg", "/image-preview-mock.jpg"},
	{"Product-Shot-02.jpg", 1_145_678, "image/jpeg", "/image-preview-mock.jpg"},
	{"Banner-Design.svg", 45_678, "image/svg+xml", "/image-preview-mock.jpg"},
	{"Screenshot-Demo.png", 678_901, "image/png", "/image-preview-mock.jpg"},
	{"Hero-Background.jpg", 2_345_678, "image/jpeg", "/image-preview-mock.jpg"},
	{"Icon-Set.png", 123_456, "image/png", "/image-preview-mock.jpg"},
	// Videos
	{"Promo-Clip.mp4", 4_194_304, "video/mp4", "/video-preview-mock.jpg"},
	{"Tutorial-Part-1.mp4", 15_728_640, "video/mp4", "/video-preview-mock.jpg"},
	{"Tutorial-Part-2.mp4", 18_432_123, "video/mp4", "/video-preview-mock.jpg"},
	{"Product-Demo.mov", 25_165_824, "video/quicktime", "/video-preview-mock.jpg"},
	{"Client-Testimonial.mp4", 8_388_608, "video/mp4", "/video-preview-mock.jpg"},
	// Audio
	{"Podcast-Teaser.mp3", 1_572_864, "audio/mpeg", "/audio-preview-mock.jpg"},
	{"Background-Music.wav", 12_582_912, "audio/wav", "/audio-preview-mock.jpg"},
	{"Voiceover-Track.mp3", 3_145_728, "audio/mpeg", "/audio-preview-mock.jpg"},
	{"Sound-Effects.aiff", 2_097_152, "audio/aiff", "/audio-preview-mock.jpg"},
	{"Interview-Recording.m4a", 6_291_456, "audio/mp4", "/audio-preview-mock.jpg"},
	// More varied files
	{"Presentation-Slides.pptx", 5_242_880, "application/vnd.openxmlformats-officedocument.presentationml.presentation", "/text-document-preview-mock.jpg"},
	{"Database-Backup.sql", 1_048_576, "application/sql", "/text-document-preview-mock.jpg"},
	{"Config-File.json", 4_096, "application/json", "/text-document-preview-mock.jpg"},
	{"Archive-Data.zip", 10_485_760, "application/zip", "/text-document-preview-mock.jpg"},
	{"Photoshop-Design.psd", 20_971_520, "image/vnd.adobe.photoshop", "/image-preview-mock.jpg"},
	{"3D-Model.obj", 3_355_443, "application/octet-stream", "/text-document-preview-mock.jpg"},
}

// PlaceholderURL подбирает превью-заглушку для добавленного в mock mode файла.
func PlaceholderURL(mime string) string {
	query := "file%20preview%20mock"
	switch {
	case strings.HasPrefix(mime, "image/"):
		query = "image%20preview%20mock"
	case strings.HasPrefix(mime, "video/"):
		query = "video%20preview%20mock"
	case strings.HasPrefix(mime, "audio/"):
		query = "audio%20preview%20mock"
	case strings.Contains(mime, "pdf"):
		query = "pdf%20document%20preview%20mock"
	case strings.Contains(mime, "text"):
		query = "text%20document%20preview%20mock"
	}
	return "/placeholder.svg?height=600&width=800&query=" + query
}

package domain

import "time"

// DocumentCategory groups uploaded documents
type DocumentCategory string

const (
	CategoryGeneral   DocumentCategory = "General"
	CategoryLegal     DocumentCategory = "Legal"
	CategoryFinancial DocumentCategory = "Financial"
	CategoryProduct   DocumentCategory = "Product"
	CategoryHiring    DocumentCategory = "Hiring"
)

// Valid reports whether c is a known category
func (c DocumentCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryLegal, CategoryFinancial, CategoryProduct, CategoryHiring:
		return true
	}
	return false
}

// Document is metadata for a file stored by the backend
type Document struct {
	ID               string           `json:"id"`
	OriginalFilename string           `json:"original_filename"`
	Category         DocumentCategory `json:"category"`
	Description      string           `json:"description,omitempty"`
	SizeBytes        int64            `json:"size_bytes"`
	CreatedAt        time.Time        `json:"created_at"`
}

// DownloadURL is a backend-issued signed URL for a document
type DownloadURL struct {
	URL string `json:"url"`
}

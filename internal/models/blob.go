package models

// BlobInfo describes one stored file.
type BlobInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt Timestamp `json:"modifiedAt"`
}

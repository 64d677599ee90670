package models

// FileRef is stored attachment metadata. StoragePath points into the file
// store; it is never exposed to clients.
type FileRef struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	ContentType string `bson:"content_type" json:"content_type"`
	Size        int64  `bson:"size" json:"size"`
	StoragePath string `bson:"storage_path" json:"-"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
}

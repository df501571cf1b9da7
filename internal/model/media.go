package model

import "context"

// Media references an uploaded file.
type Media struct {
	URL      string
	PublicID string
}

// MediaStore uploads local files to remote storage.
type MediaStore interface {
	// Upload sends the file at localPath and removes it afterwards, whether
	// or not the upload succeeded.
	Upload(ctx context.Context, localPath string) (Media, error)
	Delete(ctx context.Context, publicID string) error
}

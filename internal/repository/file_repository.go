package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FileRepository stores uploads in the default "fs" GridFS bucket.
type FileRepository struct {
	db *mongo.Database
}

// NewFileRepository checks that the bucket can be opened on db.
func NewFileRepository(db *mongo.Database) (*FileRepository, error) {
	if _, err := gridfs.NewBucket(db); err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	return &FileRepository{db: db}, nil
}

// bucket opens a bucket for a single call. Deadlines are stored on the bucket,
// so requests must not share one.
func (r *FileRepository) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(r.db)
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	var d time.Time
	if dl, ok := ctx.Deadline(); ok {
		d = dl
	}
	if err := b.SetReadDeadline(d); err != nil {
		return nil, err
	}
	if err := b.SetWriteDeadline(d); err != nil {
		return nil, err
	}
	return b, nil
}

// SaveFile streams content into the bucket and returns the new file id.
func (r *FileRepository) SaveFile(ctx context.Context, name, contentType string, content io.Reader) (string, error) {
	bucket, err := r.bucket(ctx)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	id, err := bucket.UploadFromStream(name, content, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("file_name", name).Error("Failed to upload file")
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	logger.Log.WithField("file_id", id.Hex()).Info("File uploaded")
	return id.Hex(), nil
}

// OpenFile returns the stored file with its recorded content type.
func (r *FileRepository) OpenFile(ctx context.Context, id string) (*models.StoredFile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	bucket, err := r.bucket(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if v, ok := file.Metadata.Lookup("content_type").StringValueOK(); ok && v != "" {
		contentType = v
	}

	return &models.StoredFile{
		ID:          id,
		Name:        file.Name,
		ContentType: contentType,
		Length:      file.Length,
		Content:     stream,
	}, nil
}

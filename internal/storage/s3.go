package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/mfenderov/zendesk-rag/pkg/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "zendesk-rag"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client wraps the MinIO/S3 client for snapshot operations.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// SnapshotMetadata describes one stored fetch of a Help Center.
// FailedIDs lists fetched articles whose document could not be written.
type SnapshotMetadata struct {
	Subdomain     string  `json:"subdomain"`
	Timestamp     string  `json:"timestamp"`
	DocumentCount int     `json:"document_count"`
	ArticleIDs    []int64 `json:"article_ids"`
	FailedIDs     []int64 `json:"failed_ids,omitempty"`
}

// Complete reports whether every fetched article was stored.
func (m SnapshotMetadata) Complete() bool {
	return len(m.FailedIDs) == 0
}

// DocumentFilename returns the object name used for an article's document.
func DocumentFilename(articleID int64) string {
	return strconv.FormatInt(articleID, 10) + ".json"
}

// PutDocument writes a document as JSON under the snapshot prefix.
func (c *Client) PutDocument(ctx context.Context, prefix string, doc models.Document) error {
	objectName := path.Join(prefix, "documents", DocumentFilename(doc.Metadata.ID))

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = c.minioClient.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// PutMetadata writes the snapshot metadata JSON to S3.
func (c *Client) PutMetadata(ctx context.Context, prefix string, meta SnapshotMetadata) error {
	objectName := path.Join(prefix, "metadata.json")

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	reader := bytes.NewReader(data)
	_, err = c.minioClient.PutObject(ctx, c.bucket, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put metadata: %w", err)
	}
	return nil
}

// ListDocuments returns the document filenames stored under a prefix.
func (c *Client) ListDocuments(ctx context.Context, prefix string) ([]string, error) {
	docsPrefix := path.Join(prefix, "documents") + "/"
	var files []string

	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    docsPrefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, ".json") {
			files = append(files, path.Base(object.Key))
		}
	}

	return files, nil
}

// GetDocument reads one stored document.
func (c *Client) GetDocument(ctx context.Context, prefix, filename string) (*models.Document, error) {
	objectName := path.Join(prefix, "documents", filename)

	data, err := c.read(ctx, objectName)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

// GetMetadata reads the snapshot metadata from S3.
func (c *Client) GetMetadata(ctx context.Context, prefix string) (*SnapshotMetadata, error) {
	data, err := c.read(ctx, path.Join(prefix, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	var meta SnapshotMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

func (c *Client) read(ctx context.Context, objectName string) ([]byte, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	return io.ReadAll(object)
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

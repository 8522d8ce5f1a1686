package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"maestro/config"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var accountNameRe = regexp.MustCompile(`AccountName=([^;]+)`)

// AzureBlobStorage stores uploads in an Azure Blob container. External
// calls run under a bounded timeout with exponential-backoff retries.
type AzureBlobStorage struct {
	client      *azblob.Client
	cfg         *config.BlobConfig
	accountName string
	log         *zap.Logger
}

func NewAzureBlobStorage(cfg *config.BlobConfig, log *zap.Logger) (*AzureBlobStorage, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("azure blob connection string not configured")
	}
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}
	account := ""
	if m := accountNameRe.FindStringSubmatch(cfg.ConnectionString); len(m) == 2 {
		account = m[1]
	}
	return &AzureBlobStorage{client: client, cfg: cfg, accountName: account, log: log}, nil
}

func (s *AzureBlobStorage) Upload(ctx context.Context, path string, file io.Reader, size int64, originalName, contentType string) (*Blob, error) {
	blobName := s.blobName(path, originalName)
	op := func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
		_, err := s.client.UploadStream(opCtx, s.cfg.Container, blobName, file, &azblob.UploadStreamOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		})
		return err
	}
	if err := backoff.Retry(op, s.policy(ctx)); err != nil {
		s.log.Error("blob upload failed", zap.String("blob", blobName), zap.Error(err))
		return nil, fmt.Errorf("upload %s: %w", originalName, err)
	}
	s.log.Info("blob uploaded",
		zap.String("blob", blobName),
		zap.String("original", originalName),
		zap.Int64("size", size))
	return &Blob{
		BlobName:     blobName,
		OriginalName: originalName,
		ContentType:  contentType,
		Size:         size,
		URL:          s.PublicURL(blobName),
	}, nil
}

func (s *AzureBlobStorage) Delete(ctx context.Context, blobName string) error {
	op := func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
		_, err := s.client.DeleteBlob(opCtx, s.cfg.Container, blobName, nil)
		return err
	}
	if err := backoff.Retry(op, s.policy(ctx)); err != nil {
		s.log.Error("blob delete failed", zap.String("blob", blobName), zap.Error(err))
		return fmt.Errorf("delete %s: %w", blobName, err)
	}
	return nil
}

func (s *AzureBlobStorage) TemporaryURL(ctx context.Context, blobName string, ttl time.Duration) (string, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.cfg.Container).NewBlobClient(blobName)
	url, err := blobClient.GetSASURL(sas.BlobPermissions{Read: true}, time.Now().Add(ttl), nil)
	if err != nil {
		return "", fmt.Errorf("temporary url for %s: %w", blobName, err)
	}
	return url, nil
}

func (s *AzureBlobStorage) PublicURL(blobName string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + blobName
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.accountName, s.cfg.Container, blobName)
}

// TestConnection lists a single blob; any failure becomes false.
func (s *AzureBlobStorage) TestConnection(ctx context.Context) bool {
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	one := int32(1)
	pager := s.client.NewListBlobsFlatPager(s.cfg.Container, &azblob.ListBlobsFlatOptions{MaxResults: &one})
	if _, err := pager.NextPage(opCtx); err != nil {
		s.log.Error("blob connection test failed", zap.Error(err))
		return false
	}
	return true
}

func (s *AzureBlobStorage) blobName(path, originalName string) string {
	ext := ""
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		ext = originalName[i:]
	}
	stamp := time.Now().Format("2006/01/02")
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	return fmt.Sprintf("%s/%s/%s%s", strings.Trim(path, "/"), stamp, random, ext)
}

func (s *AzureBlobStorage) policy(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.cfg.MaxRetries), ctx)
}

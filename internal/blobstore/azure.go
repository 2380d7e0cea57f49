package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// NewAzureClient creates a blob service client from a storage connection string.
func NewAzureClient(connectionString string) (*azblob.Client, error) {
	if connectionString == "" {
		return nil, errors.New("storage connection string is empty")
	}
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return client, nil
}

// AzureStore is a Store bound to a single Azure container.
type AzureStore struct {
	client    *azblob.Client
	container string
}

// NewAzureStore binds client to container.
func NewAzureStore(client *azblob.Client, container string) *AzureStore {
	return &AzureStore{client: client, container: container}
}

// Get downloads the whole blob.
func (s *AzureStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, s.container, path, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrBlobNotFound, s.container, path)
		}
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrRead, s.container, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrRead, s.container, path, err)
	}
	return data, nil
}

// Put uploads data as a block blob, replacing any existing blob.
func (s *AzureStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := validatePath(path); err != nil {
		return err
	}

	_, err := s.client.UploadBuffer(ctx, s.container, path, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrWrite, s.container, path, err)
	}
	return nil
}

// UploadURL returns a SAS URL allowing create/write/add on path until ttl
// elapses. Requires a shared-key credential (account key in the connection string).
func (s *AzureStore) UploadURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validatePath(path); err != nil {
		return "", err
	}

	bc := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(path)
	perms := sas.BlobPermissions{Create: true, Write: true, Add: true}
	u, err := bc.GetSASURL(perms, time.Now().UTC().Add(ttl), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningUnsupported, err)
	}
	return u, nil
}

func isNotFound(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return true
	}
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	return nil
}

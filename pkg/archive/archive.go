// Package archive provides durable, compressed archival of raw source
// payloads in blob storage, organized by data category and period.
// The archive is an audit and replay surface; the relational store stays
// authoritative, so archival failures are reported but never fatal.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/klauspost/compress/gzip"

	"github.com/tribuna-project/tribuna/pkg/lifecycle"
)

const contentType = "application/gzip"

// Locator identifies an archived payload. Re-archiving the same logical
// resource produces the same locator and overwrites in place.
type Locator struct {
	Category string `json:"category"`
	Period   string `json:"period"`
	Identity string `json:"identity"`
}

// Key returns the blob key for the locator: {category}/{period}/{identity}.gz.
func (l Locator) Key() string {
	return fmt.Sprintf("%s/%s/%s.gz", l.Category, l.Period, l.Identity)
}

// System manages compressed payload archival and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// Store compresses payload and writes it at the locator derived from
	// category, period, and identity. Last write wins on re-archive.
	Store(ctx context.Context, category, period, identity string, payload []byte) (Locator, error)
	// Retrieve reads and decompresses the payload at the given locator.
	// Returns ErrNotFound if nothing has been archived there.
	Retrieve(ctx context.Context, loc Locator) ([]byte, error)
	// Exists reports whether a payload is archived at the given locator.
	Exists(ctx context.Context, loc Locator) (bool, error)
}

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// New creates an archive system from the given configuration.
// It validates the connection string and creates the client but does not
// touch the container until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create archive client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "archive"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting archive system")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil {
			if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("archive container initialization failed", "error", err)
				return
			}
		}

		a.logger.Info("archive container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Store(ctx context.Context, category, period, identity string, payload []byte) (Locator, error) {
	loc := Locator{Category: category, Period: period, Identity: identity}
	if err := Validate(loc); err != nil {
		return Locator{}, err
	}

	compressed, err := Compress(payload)
	if err != nil {
		return Locator{}, fmt.Errorf("compress payload %s: %w", loc.Key(), err)
	}

	ct := contentType
	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &ct,
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, loc.Key(), bytes.NewReader(compressed), opts); err != nil {
		return Locator{}, fmt.Errorf("archive payload %s: %w", loc.Key(), err)
	}

	return loc, nil
}

func (a *azure) Retrieve(ctx context.Context, loc Locator) ([]byte, error) {
	if err := Validate(loc); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, loc.Key(), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("retrieve payload %s: %w", loc.Key(), err)
	}
	defer resp.Body.Close()

	compressed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read payload %s: %w", loc.Key(), err)
	}

	return Decompress(compressed)
}

func (a *azure) Exists(ctx context.Context, loc Locator) (bool, error) {
	if err := Validate(loc); err != nil {
		return false, err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(loc.Key())

	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check payload existence %s: %w", loc.Key(), err)
	}

	return true, nil
}

// Compress gzips payload.
func Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)

	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(compressed []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer r.Close()

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	return payload, nil
}

// Validate checks that every locator segment is present and free of path
// traversal sequences.
func Validate(loc Locator) error {
	for _, segment := range []string{loc.Category, loc.Period, loc.Identity} {
		if segment == "" {
			return ErrEmptySegment
		}
		if strings.Contains(segment, "..") {
			return ErrInvalidSegment
		}
	}
	return nil
}

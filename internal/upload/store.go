// Package upload is the blob store behind chat attachments: uploaded files
// are kept under hex-encoded names for a limited time and swept afterwards.
package upload

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Tyrowin/gochat/internal/log"
)

const defaultMimeType = "application/octet-stream"

var keyPattern = regexp.MustCompile(`^\d+-\d+-(.+)$`)

// Config holds upload configuration.
type Config struct {
	Backend       string        `mapstructure:"backend"`
	BasePath      string        `mapstructure:"base_path"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	PurgeOnStart  bool          `mapstructure:"purge_on_start"`
	PublicPrefix  string        `mapstructure:"public_prefix"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
	S3            S3Config      `mapstructure:"s3"`
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.PublicPrefix == "" {
		c.PublicPrefix = "/uploads"
	}
	c.PublicPrefix = strings.TrimSuffix(c.PublicPrefix, "/")
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = 20 << 20
	}
	if c.BasePath == "" {
		c.BasePath = "uploads"
	}
	return c
}

// Blob describes a stored upload.
type Blob struct {
	Key      string
	Filename string
	URL      string
	Size     int64
	MimeType string
}

// Store names, writes, reads, and expires blobs on top of a Storage backend.
type Store struct {
	storage Storage
	cfg     Config
	now     func() time.Time
}

// NewStore wraps an existing backend.
func NewStore(storage Storage, cfg Config) *Store {
	return &Store{storage: storage, cfg: cfg.withDefaults(), now: time.Now}
}

// Open selects the backend named in cfg.Backend ("local" or "s3").
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()

	var (
		backend Storage
		err     error
	)
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		backend, err = NewLocalStorage(cfg.BasePath)
	case "s3":
		backend, err = NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(backend, cfg), nil
}

// MaxUploadSize is the largest accepted upload in bytes.
func (s *Store) MaxUploadSize() int64 {
	return s.cfg.MaxUploadSize
}

// Store writes r under a fresh key derived from originalName.
func (s *Store) Store(ctx context.Context, r io.Reader, size int64, originalName string) (Blob, error) {
	name := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return Blob{}, fmt.Errorf("%w: empty file name", ErrInvalidName)
	}

	br := bufio.NewReaderSize(r, 3072)
	head, _ := br.Peek(3072)
	mimeType := detectMime(name, head)

	key := fmt.Sprintf("%d-%d-%s", s.now().UnixMilli(), rand.IntN(1e9), EncodeName(name))
	if err := s.storage.Write(ctx, key, br, size, mimeType); err != nil {
		return Blob{}, fmt.Errorf("failed to store %q: %w", name, err)
	}

	return Blob{
		Key:      key,
		Filename: name,
		URL:      s.cfg.PublicPrefix + "/" + key,
		Size:     size,
		MimeType: mimeType,
	}, nil
}

// Retrieve opens the blob for key and recovers its original name.
func (s *Store) Retrieve(ctx context.Context, key string) (io.ReadCloser, Blob, error) {
	blob, err := s.Describe(key)
	if err != nil {
		return nil, Blob{}, err
	}

	rc, err := s.storage.Read(ctx, key)
	if err != nil {
		return nil, Blob{}, err
	}
	return rc, blob, nil
}

// Describe parses a stored key without touching the backend.
func (s *Store) Describe(key string) (Blob, error) {
	m := keyPattern.FindStringSubmatch(key)
	if m == nil {
		return Blob{}, fmt.Errorf("%w: %q", ErrInvalidName, key)
	}

	name, err := DecodeName(m[1])
	if err != nil {
		return Blob{}, err
	}

	return Blob{
		Key:      key,
		Filename: name,
		URL:      s.cfg.PublicPrefix + "/" + key,
		Size:     -1,
		MimeType: detectMime(name, nil),
	}, nil
}

// Sweep deletes blobs older than the configured TTL and reports how many
// were removed.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.TTL)
	return s.deleteWhere(ctx, func(f FileInfo) bool { return f.LastModified.Before(cutoff) })
}

// Purge deletes every blob.
func (s *Store) Purge(ctx context.Context) (int, error) {
	return s.deleteWhere(ctx, func(FileInfo) bool { return true })
}

func (s *Store) deleteWhere(ctx context.Context, match func(FileInfo) bool) (int, error) {
	files, err := s.storage.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if !match(f) {
			continue
		}
		if err := s.storage.Delete(ctx, f.Key); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str(log.FieldBlobKey, f.Key).Msg("failed to delete blob")
			continue
		}
		removed++
	}
	return removed, nil
}

// Run purges on start when configured, then sweeps expired blobs every
// SweepInterval until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	logger := log.Ctx(ctx)

	if s.cfg.PurgeOnStart {
		if n, err := s.Purge(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to purge uploads")
		} else if n > 0 {
			logger.Info().Int("removed", n).Msg("purged uploads")
		}
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("upload sweep failed")
				continue
			}
			if n > 0 {
				logger.Info().Int("removed", n).Dur("ttl", s.cfg.TTL).Msg("expired uploads removed")
			}
		}
	}
}

func detectMime(name string, head []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	if len(head) > 0 {
		return mimetype.Detect(head).String()
	}
	return defaultMimeType
}

package nosible

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/kitbuilder587/nosible-go/internal/api"
	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
)

const (
	MinBulkResults     = 1000
	MaxBulkResults     = 10000
	DefaultBulkResults = MinBulkResults
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

	errNotReady = errors.New("download not ready")
)

type bulkJob struct {
	DownloadFrom string `json:"download_from"`
	DecryptUsing string `json:"decrypt_using"`
}

// BulkSearch runs a slow search for 1000 to 10000 results. The service
// answers with an encrypted download link that is polled until the results
// are ready.
func (c *Client) BulkSearch(ctx context.Context, s Search) (ResultSet, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.NResults == 0 {
		s.NResults = DefaultBulkResults
	}
	s = s.WithDefaults()
	if s.NResults < MinBulkResults || s.NResults > MaxBulkResults {
		return nil, fmt.Errorf("%w: got %d", ErrBulkResultsRange, s.NResults)
	}
	limit := s.NResults

	payload, err := c.buildPayload(ctx, s)
	if err != nil {
		return nil, err
	}

	c.logger.Info("performing bulk search", zap.String("question", s.Question))

	var job bulkJob
	err = c.call(ctx, ratelimit.EndpointSlow, "bulk_search", func(ctx context.Context) error {
		resp, err := c.api.Post(ctx, "slow-search", payload)
		if err != nil {
			return err
		}
		if err := api.Check(resp); err != nil {
			return err
		}
		return resp.JSON(&job)
	})
	if err != nil {
		return nil, fmt.Errorf("bulk search for %q: %w", s.Question, err)
	}
	if job.DownloadFrom == "" || job.DecryptUsing == "" {
		return nil, fmt.Errorf("bulk search for %q: %w", s.Question, ErrMissingDownload)
	}

	url := strings.Replace(job.DownloadFrom, ".zstd.", ".gzip.", 1)
	data, err := c.download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("bulk search for %q: %w", s.Question, err)
	}

	rs, err := decodeBulk(data, job.DecryptUsing)
	if err != nil {
		return nil, fmt.Errorf("bulk search for %q: %w", s.Question, err)
	}
	return rs.Top(limit), nil
}

// download polls url until it answers 2xx or the poll budget runs out.
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	for attempt := 1; attempt <= c.cfg.PollAttempts; attempt++ {
		var body []byte
		err := c.call(ctx, "", "bulk_download", func(ctx context.Context) error {
			resp, err := c.api.Get(ctx, url)
			if err != nil {
				return err
			}
			if !resp.OK() {
				return errNotReady
			}
			body = resp.Body
			return nil
		})
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, errNotReady) {
			return nil, err
		}

		c.logger.Debug("bulk results not ready",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", c.cfg.PollInterval),
		)
		if attempt == c.cfg.PollAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
	return nil, ErrResultsNotReady
}

// decryptBulk verifies and decrypts a Fernet token. Download tokens carry no
// expiry, so the ttl check is off.
func decryptBulk(tok []byte, decryptUsing string) ([]byte, error) {
	key, err := fernet.DecodeKey(decryptUsing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDecryptKey, err)
	}
	plain := fernet.VerifyAndDecrypt(bytes.TrimSpace(tok), 0, []*fernet.Key{key})
	if plain == nil {
		return nil, ErrInvalidToken
	}
	return plain, nil
}

// decodeBulk decrypts the download and decompresses it by magic bytes.
func decodeBulk(data []byte, decryptUsing string) (ResultSet, error) {
	plain, err := decryptBulk(data, decryptUsing)
	if err != nil {
		return nil, fmt.Errorf("decrypt results: %w", err)
	}

	switch {
	case bytes.HasPrefix(plain, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(plain))
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer zr.Close()
		if plain, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("decompress gzip: %w", err)
		}
	case bytes.HasPrefix(plain, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("open zstd: %w", err)
		}
		defer dec.Close()
		if plain, err = dec.DecodeAll(plain, nil); err != nil {
			return nil, fmt.Errorf("decompress zstd: %w", err)
		}
	}

	return decodeResults(plain)
}

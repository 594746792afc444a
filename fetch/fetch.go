// Package fetch opens dataset sources that may be local paths or http(s)
// URLs.
package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultRate paces requests made by a Client from New.
const DefaultRate = rate.Limit(5)

// Client fetches sources over HTTP or from disk. A nil Limiter leaves
// requests unpaced.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
}

// New returns a Client whose requests time out after timeout and are paced
// at DefaultRate.
func New(timeout time.Duration) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(DefaultRate, 2),
	}
}

// IsURL reports whether src names an http or https resource.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Bytes returns the full contents of src.
func (c *Client) Bytes(ctx context.Context, src string) ([]byte, error) {
	if !IsURL(src) {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: read %s", src)
		}
		return data, nil
	}

	body, err := c.get(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body of %s", src)
	}
	return data, nil
}

// Both fetches two sources concurrently. The first failure cancels the
// other request.
func (c *Client) Both(ctx context.Context, a, b string) ([]byte, []byte, error) {
	var da, db []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		da, err = c.Bytes(gctx, a)
		return err
	})
	g.Go(func() error {
		var err error
		db, err = c.Bytes(gctx, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return da, db, nil
}

// Download saves url to dest. When skipExisting is set and dest exists the
// download is skipped and false is returned.
func (c *Client) Download(ctx context.Context, url, dest string, skipExisting bool) (bool, error) {
	if skipExisting {
		if _, err := os.Stat(dest); err == nil {
			zap.L().Info("fetch: skip existing file", zap.String("path", dest))
			return false, nil
		}
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return false, err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, eris.Wrapf(err, "fetch: create directory for %s", dest)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return false, eris.Wrap(err, "fetch: create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		return false, eris.Wrapf(err, "fetch: write %s", dest)
	}
	if err := tmp.Close(); err != nil {
		return false, eris.Wrapf(err, "fetch: close %s", dest)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return false, eris.Wrapf(err, "fetch: rename to %s", dest)
	}

	zap.L().Info("fetch: downloaded",
		zap.String("url", url),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)
	return true, nil
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: build request for %s", url)
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "fetch: wait to GET %s", url)
		}
	}

	zap.L().Debug("fetch: GET", zap.String("url", url))
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: GET %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		_ = resp.Body.Close()
		return nil, eris.Errorf("fetch: GET %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return resp.Body, nil
}

// Job is one file to download.
type Job struct {
	URL  string
	Dest string
}

// DownloadAll runs every job concurrently. It returns how many files were
// written and how many were skipped because they already existed.
func (c *Client) DownloadAll(ctx context.Context, jobs []Job, skipExisting bool) (int, int, error) {
	wrote := make([]bool, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			ok, err := c.Download(gctx, j.URL, j.Dest, skipExisting)
			wrote[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	var downloaded int
	for _, ok := range wrote {
		if ok {
			downloaded++
		}
	}
	return downloaded, len(jobs) - downloaded, nil
}

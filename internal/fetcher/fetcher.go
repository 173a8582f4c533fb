// Package fetcher retrieves feature sources (point tables, zipped
// shapefiles) from http(s) and ftp URLs and reads tabular point data.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher streams the resource at a URL into dst and returns the byte count.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, dst io.Writer) (int64, error)
}

// Router picks a Fetcher by URL scheme.
type Router struct {
	HTTP Fetcher
	FTP  Fetcher
}

// For returns the fetcher serving rawURL's scheme.
func (r Router) For(rawURL string) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: parse url")
	}
	var f Fetcher
	switch u.Scheme {
	case "http", "https":
		f = r.HTTP
	case "ftp":
		f = r.FTP
	}
	if f == nil {
		return nil, eris.Errorf("fetcher: no fetcher for scheme %q", u.Scheme)
	}
	return f, nil
}

// IsRemote reports whether src is an http(s) or ftp URL with a host.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "ftp"
}

// Save fetches rawURL into path. The file only appears once the transfer has
// completed; a failed transfer leaves no partial file behind.
func (r Router) Save(ctx context.Context, rawURL, path string) (int64, error) {
	f, err := r.For(rawURL)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, eris.Wrap(err, "fetcher: create directory")
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	n, err := f.Fetch(ctx, rawURL, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = eris.Wrap(cerr, "fetcher: close temp file")
	}
	if err != nil {
		return n, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return n, eris.Wrap(err, "fetcher: rename download")
	}

	zap.L().Debug("fetcher: saved", zap.String("url", rawURL), zap.String("path", path), zap.Int64("bytes", n))
	return n, nil
}

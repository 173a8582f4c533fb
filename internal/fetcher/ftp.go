package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures FTPFetcher.
type FTPOptions struct {
	Timeout  time.Duration
	MaxBytes int64
}

// FTPFetcher downloads a single file per connection over passive FTP.
type FTPFetcher struct {
	timeout  time.Duration
	maxBytes int64
}

// NewFTPFetcher creates an FTPFetcher.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	f := &FTPFetcher{timeout: opts.Timeout, maxBytes: opts.MaxBytes}
	if f.timeout == 0 {
		f.timeout = 60 * time.Second
	}
	return f
}

// ftpLocation is the server address, file path and login of an ftp URL.
type ftpLocation struct {
	addr     string
	file     string
	user     string
	password string
}

// parseFTPURL splits an ftp URL. The port defaults to 21 and the login to
// anonymous unless the URL carries userinfo.
func parseFTPURL(rawURL string) (ftpLocation, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpLocation{}, eris.Wrap(err, "ftp: parse url")
	}
	if u.Scheme != "ftp" {
		return ftpLocation{}, eris.Errorf("ftp: unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		return ftpLocation{}, eris.Errorf("ftp: no file in %s", rawURL)
	}

	loc := ftpLocation{addr: u.Host, file: u.Path, user: "anonymous", password: "anonymous@"}
	if u.Port() == "" {
		loc.addr = net.JoinHostPort(u.Hostname(), "21")
	}
	if name := u.User.Username(); name != "" {
		loc.user = name
		loc.password, _ = u.User.Password()
	}
	return loc, nil
}

// Fetch implements Fetcher.
func (f *FTPFetcher) Fetch(ctx context.Context, rawURL string, dst io.Writer) (int64, error) {
	loc, err := parseFTPURL(rawURL)
	if err != nil {
		return 0, err
	}

	log := zap.L().With(zap.String("addr", loc.addr), zap.String("file", loc.file))
	log.Debug("ftp: connecting")

	conn, err := ftp.Dial(loc.addr, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return 0, eris.Wrap(err, "ftp: dial")
	}
	defer func() {
		if qerr := conn.Quit(); qerr != nil {
			log.Debug("ftp: quit", zap.Error(qerr))
		}
	}()

	if err := conn.Login(loc.user, loc.password); err != nil {
		return 0, eris.Wrap(err, "ftp: login")
	}

	resp, err := conn.Retr(loc.file)
	if err != nil {
		return 0, eris.Wrapf(err, "ftp: retrieve %s", loc.file)
	}
	n, err := copyLimited(dst, resp, f.maxBytes)
	if cerr := resp.Close(); err == nil && cerr != nil {
		err = eris.Wrap(cerr, "ftp: close transfer")
	}
	return n, err
}

package source

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type ftpFetcher struct {
	timeout time.Duration
}

func newFTPFetcher(timeout time.Duration) *ftpFetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ftpFetcher{timeout: timeout}
}

// ftpTarget is a parsed ftp:// location.
type ftpTarget struct {
	host     string
	path     string
	user     string
	password string
}

// parseFTPURL splits an ftp URL into host:port, path and credentials.
// Missing credentials mean an anonymous login.
func parseFTPURL(rawURL string) (ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpTarget{}, eris.Wrap(err, "parse ftp url")
	}
	if u.Scheme != "ftp" {
		return ftpTarget{}, eris.Errorf("expected ftp scheme, got %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		return ftpTarget{}, eris.New("empty path in ftp url")
	}

	t := ftpTarget{host: u.Host, path: u.Path, user: "anonymous", password: "anonymous@"}
	if _, _, splitErr := net.SplitHostPort(t.host); splitErr != nil {
		t.host = net.JoinHostPort(t.host, "21")
	}
	if u.User != nil {
		t.user = u.User.Username()
		t.password, _ = u.User.Password()
	}
	return t, nil
}

func (f *ftpFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	t, err := parseFTPURL(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp")
	}

	zap.L().Debug("source: ftp connecting", zap.String("host", t.host), zap.String("path", t.path))

	conn, err := ftp.Dial(t.host, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp dial")
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login(t.user, t.password); err != nil {
		return nil, eris.Wrap(err, "source: ftp login")
	}

	resp, err := conn.Retr(t.path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: ftp retrieve %s", t.path)
	}
	defer resp.Close() //nolint:errcheck

	data, err := readAll(resp, maxDocumentBytes)
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp read")
	}
	return data, nil
}

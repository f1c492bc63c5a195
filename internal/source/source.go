// Package source loads bulletin text from local files, HTTP(S) and FTP.
package source

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Document is a loaded bulletin.
type Document struct {
	// Name is the base name of the file or URL path.
	Name string
	// Bulletin is the bulletin number, given or inferred. Empty when unknown.
	Bulletin string
	Text     string
}

// Options configures a Loader.
type Options struct {
	UserAgent    string
	HTTPTimeout  time.Duration
	FTPTimeout   time.Duration
	PdfToTextBin string
	// RPS throttles remote fetches. Zero disables throttling.
	RPS        float64
	MaxRetries int
	// RetryBackoff is the delay before the first retry. Default: 1s.
	RetryBackoff time.Duration
}

// Loader resolves a location to bulletin text.
type Loader struct {
	http *httpFetcher
	ftp  *ftpFetcher
	pdf  TextExtractor
	log  *zap.Logger
}

// NewLoader returns a Loader with the given options.
func NewLoader(opts Options) *Loader {
	return &Loader{
		http: newHTTPFetcher(opts),
		ftp:  newFTPFetcher(opts.FTPTimeout),
		pdf:  NewPdfToText(opts.PdfToTextBin),
		log:  zap.L().With(zap.String("component", "source")),
	}
}

// Load reads the bulletin at location: a local path, an http(s) URL or an
// ftp URL. bulletin overrides the number inferred from the name.
func (l *Loader) Load(ctx context.Context, location, bulletin string) (*Document, error) {
	name, data, err := l.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	l.log.Debug("source: fetched", zap.String("location", location), zap.Int("bytes", len(data)))
	return l.FromBytes(ctx, name, bulletin, data)
}

// FromBytes builds a Document from raw file content. PDF content is
// converted to text first.
func (l *Loader) FromBytes(ctx context.Context, name, bulletin string, data []byte) (*Document, error) {
	var text string
	if isPDF(name, data) {
		t, err := l.pdfText(ctx, data)
		if err != nil {
			return nil, err
		}
		text = t
	} else {
		text = Decode(data)
	}

	if bulletin == "" {
		bulletin = InferBulletin(name, text)
	}
	return &Document{Name: name, Bulletin: bulletin, Text: text}, nil
}

func (l *Loader) fetch(ctx context.Context, location string) (string, []byte, error) {
	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			data, err := l.http.get(ctx, location)
			return path.Base(u.Path), data, err
		case "ftp":
			data, err := l.ftp.get(ctx, location)
			return path.Base(u.Path), data, err
		}
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return "", nil, eris.Wrapf(err, "source: read %s", location)
	}
	return filepath.Base(location), data, nil
}

func (l *Loader) pdfText(ctx context.Context, data []byte) (string, error) {
	f, err := os.CreateTemp("", "boletin-*.pdf")
	if err != nil {
		return "", eris.Wrap(err, "source: create temp pdf")
	}
	defer os.Remove(f.Name()) //nolint:errcheck

	if _, err := f.Write(data); err != nil {
		f.Close() //nolint:errcheck
		return "", eris.Wrap(err, "source: write temp pdf")
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrap(err, "source: close temp pdf")
	}

	text, err := l.pdf.ExtractText(ctx, f.Name())
	if err != nil {
		return "", err
	}
	return Decode([]byte(text)), nil
}

func isPDF(name string, data []byte) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf") || strings.HasPrefix(string(data[:min(len(data), 5)]), "%PDF-")
}

var (
	nameBulletinRe = regexp.MustCompile(`(?i)bolet[ií]n[\s_-]*(?:n[°º.]?\s*)?(\d+)`)
	textBulletinRe = regexp.MustCompile(`(?i)bolet[ií]n\s+judicial\s+n(?:[°º.]|o\.?|úmero)?\s*(\d+)`)
)

// headerWindow bounds how far into the text the bulletin header is searched.
const headerWindow = 2000

// InferBulletin finds the bulletin number in a file name such as
// "Boletin_45.txt" or "boletin-45.pdf", falling back to a
// "Boletín Judicial N° 45" header near the top of the text.
func InferBulletin(name, text string) string {
	if m := nameBulletinRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	head := text
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	if m := textBulletinRe.FindStringSubmatch(head); m != nil {
		return m[1]
	}
	return ""
}

// readAll reads r up to limit bytes.
func readAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, eris.Errorf("source: document larger than %d bytes", limit)
	}
	return data, nil
}

// maxDocumentBytes caps a single bulletin download.
const maxDocumentBytes = 64 << 20

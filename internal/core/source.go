package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrEmptySource is returned when a source holds no data.
	ErrEmptySource = errors.New("empty file")

	// ErrFetchFailed wraps every failure to download a remote source.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrAddressNotAllowed is returned when a fetch would connect to a
	// loopback, private, link-local or unspecified address.
	ErrAddressNotAllowed = errors.New("address not allowed")
)

// SourceOptions controls how ReadSource decodes a raw source.
type SourceOptions struct {
	MaxSize  int64  // 0 disables the limit
	Encoding string // utf-8 (default), latin1, windows-1252
}

var gzipMagic = []byte{0x1f, 0x8b}

// encodings maps accepted encoding names to their decoders. A nil decoder
// means the bytes are already UTF-8.
var encodings = map[string]encoding.Encoding{
	"":             nil,
	"utf-8":        nil,
	"utf8":         nil,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// ValidEncoding reports whether name is an encoding ReadSource accepts.
func ValidEncoding(name string) bool {
	_, ok := encodings[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ReadSource reads r to the end and returns its text ready for ingest.
// Gzip input is detected by its magic bytes and decompressed. Legacy
// encodings are converted to UTF-8, a leading BOM is dropped and any
// invalid UTF-8 left over is replaced with U+FFFD. MaxSize applies to the
// decoded bytes.
func ReadSource(r io.Reader, opts SourceOptions) (string, error) {
	enc, ok := encodings[strings.ToLower(strings.TrimSpace(opts.Encoding))]
	if !ok {
		return "", fmt.Errorf("encoding error: unsupported encoding %q", opts.Encoding)
	}

	br := bufio.NewReader(r)
	var src io.Reader = br

	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read source: %w", err)
	}
	if len(head) == len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return "", fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	if enc != nil {
		src = enc.NewDecoder().Reader(src)
	}

	data, err := io.ReadAll(WrapForStreaming(src, opts.MaxSize))
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, opts.MaxSize)
		}
		return "", fmt.Errorf("read source: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptySource
	}

	return sanitizeUTF8(data), nil
}

// Fetcher downloads remote sources over HTTP(S).
type Fetcher struct {
	Client  *http.Client
	MaxSize int64
}

// NewFetcher creates a fetcher whose requests time out after timeout.
// Unless allowPrivate is set, connections to loopback, private, link-local,
// multicast and unspecified addresses are refused. The check runs on the
// resolved address of every dial, so it also covers redirects and DNS names
// that point inward.
func NewFetcher(timeout time.Duration, maxSize int64, allowPrivate bool) *Fetcher {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !allowPrivate {
		dialer.Control = publicOnly
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &Fetcher{
		Client:  &http.Client{Timeout: timeout, Transport: transport},
		MaxSize: maxSize,
	}
}

// publicOnly is a net.Dialer Control hook that rejects non-public addresses.
func publicOnly(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAddressNotAllowed, address)
	}
	if !isPublicAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrAddressNotAllowed, ap.Addr())
	}
	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast():
		return false
	}
	return true
}

// Fetch GETs rawURL and returns the response body. Only http and https
// URLs are accepted. The caller must close the returned body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrFetchFailed, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "tabproj")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetchFailed, u.Redacted(), resp.Status)
	}
	if f.MaxSize > 0 && resp.ContentLength > f.MaxSize {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, resp.ContentLength, f.MaxSize)
	}
	return resp.Body, nil
}

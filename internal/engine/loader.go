package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Source describes one load request. At most one input is used, in priority
// order: the local flag wins over an upload, which wins over a URL.
type Source struct {
	UseLocal  bool
	LocalPath string // optional override of the configured path
	Upload    []byte
	URL       string
}

// ErrNoSource means the request carried no input at all; surfaced to the
// user as a warning rather than a failure.
var ErrNoSource = errors.New("upload a file or paste a URL")

// Loader acquires datasets and caches them by input identity so repeated
// view re-renders never re-fetch or re-parse. The cache is session-scoped
// and never evicts.
type Loader struct {
	mu        sync.Mutex
	cache     map[string]*Dataset
	client    *http.Client
	localPath string
	log       *zap.Logger
}

func NewLoader(localPath string, timeout time.Duration, log *zap.Logger) *Loader {
	return &Loader{
		cache:     make(map[string]*Dataset),
		client:    &http.Client{Timeout: timeout},
		localPath: localPath,
		log:       log,
	}
}

// Load acquires a dataset from the highest-priority input present.
// The returned label names the source for display and logging.
func (l *Loader) Load(ctx context.Context, src Source) (*Dataset, string, error) {
	switch {
	case src.UseLocal:
		path := src.LocalPath
		if path == "" {
			path = l.localPath
		}
		ds, err := l.FromLocal(path)
		return ds, "local:" + path, err
	case len(src.Upload) > 0:
		ds, err := l.FromUpload(src.Upload)
		return ds, "upload", err
	case src.URL != "":
		ds, err := l.FromURL(ctx, src.URL)
		return ds, "url:" + src.URL, err
	default:
		return nil, "", ErrNoSource
	}
}

// FromLocal reads and parses the configured CSV file.
func (l *Loader) FromLocal(path string) (*Dataset, error) {
	return l.cached("path:"+path, func() (*Dataset, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read local file: %w", err)
		}
		return ParseCSV(bytes.NewReader(content))
	})
}

// FromURL fetches a CSV over HTTP with the loader's bounded timeout.
func (l *Loader) FromURL(ctx context.Context, url string) (*Dataset, error) {
	return l.cached("url:"+url, func() (*Dataset, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("bad url: %w", err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch csv: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("fetch csv: unexpected status %s", resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return ParseCSV(bytes.NewReader(body))
	})
}

// FromUpload parses an uploaded byte buffer, dropping undecodable bytes.
func (l *Loader) FromUpload(data []byte) (*Dataset, error) {
	key := sha256.Sum256(data)
	return l.cached("bytes:"+hex.EncodeToString(key[:]), func() (*Dataset, error) {
		clean := strings.ToValidUTF8(string(data), "")
		return ParseCSV(strings.NewReader(clean))
	})
}

// cached runs fetch once per key; later hits return the parsed dataset.
func (l *Loader) cached(key string, fetch func() (*Dataset, error)) (*Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ds, ok := l.cache[key]; ok {
		l.log.Debug("load cache hit", zap.String("key", key))
		return ds, nil
	}
	start := time.Now()
	ds, err := fetch()
	if err != nil {
		return nil, err
	}
	l.cache[key] = ds
	l.log.Info("dataset loaded",
		zap.String("key", key),
		zap.Int("rows", ds.NumRows()),
		zap.Int("columns", ds.NumColumns()),
		zap.Duration("took", time.Since(start)))
	return ds, nil
}

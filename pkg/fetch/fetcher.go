package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/civicdata/rollcall/pkg/congress"
	"github.com/civicdata/rollcall/pkg/senate"
	"go.uber.org/zap"
)

// MinCompleteSize is the size below which a downloaded vote is suspected to be
// truncated. Complete documents run around 23KB.
const MinCompleteSize = 20000

// Status tells how Fetch produced its result.
type Status int

const (
	StatusCached Status = iota
	StatusDownloaded
	StatusNotPublished
)

func (s Status) String() string {
	switch s {
	case StatusCached:
		return "cached"
	case StatusDownloaded:
		return "downloaded"
	case StatusNotPublished:
		return "not_published"
	default:
		return "unknown"
	}
}

// Result is a raw vote document, either read from the cache or freshly downloaded.
// Body is nil when the vote is not published yet.
type Result struct {
	Status      Status
	Path        string
	URL         string
	ContentType string
	Length      int
	Body        []byte
}

// Fetcher retrieves vote documents into an on-disk cache.
type Fetcher struct {
	client   senate.Client
	cacheDir string
	logger   *zap.Logger
	minSize  int
}

// New returns a Fetcher caching under cacheDir.
func New(client senate.Client, cacheDir string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		cacheDir: cacheDir,
		logger:   logger,
		minSize:  MinCompleteSize,
	}
}

// Path is the cache location of a roll: <cache>/senate/rolls/<year>/<00005>.xml.
func (f *Fetcher) Path(id congress.RollID) string {
	return filepath.Join(f.yearDir(id.Year), congress.ZeroPrefix(id.Number)+".xml")
}

func (f *Fetcher) yearDir(year int) string {
	return filepath.Join(f.cacheDir, "senate", "rolls", strconv.Itoa(year))
}

// EnsureDirs creates the cache directories for both years of a congress.
func (f *Fetcher) EnsureDirs(congressNum int) error {
	first, second := congress.YearsForCongress(congressNum)
	for _, year := range []int{first, second} {
		if err := os.MkdirAll(f.yearDir(year), 0o755); err != nil {
			return fmt.Errorf("create cache dir for %d: %w", year, err)
		}
	}
	return nil
}

// Fetch returns the document for id. A cached copy is used unless force is set.
// Votes that are not up yet come back as StatusNotPublished with no error;
// unreachable or truncated documents come back as a *DownloadError.
func (f *Fetcher) Fetch(ctx context.Context, id congress.RollID, force bool) (Result, error) {
	url := f.client.Paths().Vote(id)
	dest := f.Path(id)
	log := f.logger.With(zap.String("roll_id", id.String()), zap.String("url", url))

	if !force {
		body, err := os.ReadFile(dest)
		if err == nil {
			log.Debug("Cached at", zap.String("path", dest))
			return Result{Status: StatusCached, Path: dest, URL: url, Length: len(body), Body: body}, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Result{}, &DownloadError{URL: url, Destination: dest, Reason: ReasonCouldNotDownload, Err: err}
		}
	}

	log.Debug("Syncing to disc", zap.String("path", dest))
	res, err := f.download(ctx, url, dest)
	if err != nil || res.Status == StatusNotPublished {
		return res, err
	}

	if res.Length < f.minSize {
		log.Debug("Re-downloading once, looked truncated", zap.Int("length", res.Length))
		res, err = f.download(ctx, url, dest)
		if err != nil {
			f.remove(dest)
			return res, err
		}
		if res.Status == StatusNotPublished {
			return res, nil
		}
		if res.Length < f.minSize {
			if check := senate.TryParseStrict(res.Body); !check.OK {
				log.Debug("Failed strict XML check, assuming it's still truncated", zap.Error(check.Err))
				f.remove(dest)
				return Result{}, &DownloadError{
					URL:           url,
					Destination:   dest,
					Reason:        ReasonFailedCheck,
					ContentLength: res.Length,
					Err:           check.Err,
				}
			}
			log.Debug("OK, passes strict XML check, accepting it", zap.Int("length", res.Length))
		}
	}

	if err := writeFile(dest, res.Body); err != nil {
		return Result{}, &DownloadError{URL: url, Destination: dest, Reason: ReasonCouldNotDownload, Err: err}
	}
	return res, nil
}

// download performs one GET. Nothing is written to dest; a body is only
// cached once Fetch has accepted it.
func (f *Fetcher) download(ctx context.Context, url, dest string) (Result, error) {
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, &DownloadError{URL: url, Destination: dest, Reason: ReasonCouldNotDownload, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound || (resp.StatusCode < 300 && !senate.IsXMLContentType(resp.ContentType)) {
		f.logger.Debug("Wrong content type, vote not published yet",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("content_type", resp.ContentType))
		f.remove(dest)
		return Result{Status: StatusNotPublished, Path: dest, URL: url, ContentType: resp.ContentType}, nil
	}
	if resp.StatusCode >= 300 {
		return Result{}, &DownloadError{
			URL:           url,
			Destination:   dest,
			Reason:        ReasonCouldNotDownload,
			ContentLength: len(resp.Body),
			Err:           fmt.Errorf("http %d", resp.StatusCode),
		}
	}

	return Result{
		Status:      StatusDownloaded,
		Path:        dest,
		URL:         url,
		ContentType: resp.ContentType,
		Length:      len(resp.Body),
		Body:        resp.Body,
	}, nil
}

func (f *Fetcher) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn("Failed to remove cached file", zap.String("path", path), zap.Error(err))
	}
}

// writeFile replaces path through a rename in the same directory.
func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package source

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fwimg/pix"
)

// If an asset cannot be downloaded within this time, abort.
const downloadTimeout = 30 * time.Second

// Icon set names to the base URL their SVG files live under.
var iconBases = map[string]string{
	"mdi":    "https://raw.githubusercontent.com/Templarian/MaterialDesign/master/svg/",
	"mdil":   "https://raw.githubusercontent.com/Pictogrammers/MaterialDesignLight/refs/heads/master/svg/",
	"memory": "https://raw.githubusercontent.com/Pictogrammers/Memory/refs/heads/main/src/svg/",
}

// IsIconSet reports whether name is a known downloadable icon collection.
func IsIconSet(name string) bool {
	_, ok := iconBases[name]
	return ok
}

// Fetcher downloads web and icon assets into a local cache directory. Web
// downloads are stored under a key derived from the URL and indexed in a
// small sqlite database so repeat builds skip the network entirely.
type Fetcher struct {
	dir    string
	db     *sql.DB
	client *http.Client
	logger *slog.Logger
}

// NewFetcher opens (creating if needed) the cache at dir.
func NewFetcher(dir string, logger *slog.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, "assets.db"))
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS asset (url TEXT PRIMARY KEY NOT NULL, key TEXT NOT NULL, fetched INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Fetcher{
		dir:    dir,
		db:     db,
		client: &http.Client{Timeout: downloadTimeout},
		logger: logger,
	}, nil
}

func (f *Fetcher) Close() error { return f.db.Close() }

// Resolve turns a Ref into an openable frame source, downloading it first
// if necessary. SDCard refs are resolved on the device, never here.
func (f *Fetcher) Resolve(ref Ref, maxW, maxH int) (pix.Source, error) {
	switch ref.Kind {
	case Local:
		return Open(ref.Value, maxW, maxH)
	case Web:
		path, err := f.Download(ref.Value)
		if err != nil {
			return nil, err
		}
		return Open(path, maxW, maxH)
	case Icon:
		path, err := f.Icon(ref.Set, ref.Value)
		if err != nil {
			return nil, err
		}
		return Open(path, maxW, maxH)
	}
	return nil, fmt.Errorf("cannot open %q on the build host", ref)
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:8]
}

// Download fetches url into the cache and returns the local path. A cached
// copy is reused as long as the file still exists.
func (f *Fetcher) Download(url string) (string, error) {
	var key string
	err := f.db.QueryRow("SELECT key FROM asset WHERE url = ?", url).Scan(&key)
	switch {
	case err == sql.ErrNoRows:
		key = cacheKey(url)
	case err != nil:
		return "", err
	default:
		path := filepath.Join(f.dir, key)
		if _, err := os.Stat(path); err == nil {
			f.logger.Debug("using cached asset", "url", url, "path", path)
			return path, nil
		}
	}

	path := filepath.Join(f.dir, key)
	if err := f.fetch(url, path); err != nil {
		return "", err
	}

	if _, err := f.db.Exec("INSERT OR REPLACE INTO asset (url, key, fetched) VALUES (?, ?, ?)",
		url, key, time.Now().Unix()); err != nil {
		return "", err
	}

	return path, nil
}

// Icon fetches the named icon from the given set, caching it by name.
func (f *Fetcher) Icon(set, name string) (string, error) {
	base, ok := iconBases[set]
	if !ok {
		return "", fmt.Errorf("unknown icon set %q", set)
	}

	path := filepath.Join(f.dir, set, name+".svg")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	if err := f.fetch(base+name+".svg", path); err != nil {
		return "", err
	}
	return path, nil
}

func (f *Fetcher) fetch(url, path string) error {
	f.logger.Info("downloading", "url", url)

	resp, err := f.client.Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(f.dir, ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dhamidi/vimls/vim/parser"
)

// cacheSchemaVersion invalidates stored payloads when their layout
// changes.
const cacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash. The cache is content addressed, so
// moving or renaming a file never invalidates its entry.
type Digest [sha256.Size]byte

func ContentDigest(content []byte) Digest {
	return Digest(sha256.Sum256(content))
}

// CachePayload is the serialized form of one file's diagnostics.
type CachePayload struct {
	Schema   uint16
	Findings []CachedDiagnostic
}

type CachedDiagnostic struct {
	Start    int
	End      int
	Message  string
	Severity uint8
	Kind     uint8
}

func NewCachePayload(diags []parser.Diagnostic) *CachePayload {
	payload := &CachePayload{
		Schema:   cacheSchemaVersion,
		Findings: make([]CachedDiagnostic, len(diags)),
	}
	for i, d := range diags {
		payload.Findings[i] = CachedDiagnostic{
			Start:    d.Span.Start,
			End:      d.Span.End,
			Message:  d.Message,
			Severity: uint8(d.Severity),
			Kind:     uint8(d.Kind),
		}
	}
	return payload
}

// Diagnostics rebuilds the parser's diagnostic slice, nil when the
// cached parse was clean.
func (p *CachePayload) Diagnostics() []parser.Diagnostic {
	if len(p.Findings) == 0 {
		return nil
	}
	diags := make([]parser.Diagnostic, len(p.Findings))
	for i, f := range p.Findings {
		diags[i] = parser.Diagnostic{
			Span:     parser.Span{Start: f.Start, End: f.End},
			Message:  f.Message,
			Severity: parser.Severity(f.Severity),
			Kind:     parser.DiagKind(f.Kind),
		}
	}
	return diags
}

// DiskCache persists lint results between runs under one directory.
// Safe for concurrent use; a nil cache ignores every call.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache returns the cache at the standard per-user location,
// honoring XDG_CACHE_HOME.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheDir(filepath.Join(base, app))
}

// OpenDiskCacheDir returns a cache rooted at an explicit directory.
func OpenDiskCacheDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "diags", hex.EncodeToString(key[:])+".mp")
}

// Put writes a payload atomically: encode to a temp file in the same
// directory, then rename into place.
func (c *DiskCache) Put(key Digest, payload *CachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the payload for key. A missing entry reads as (false, nil),
// and so does one written by an older schema.
func (c *DiskCache) Get(key Digest, out *CachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != cacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll throws the whole cache away: the directory is renamed aside
// first so readers never see a half-deleted tree.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

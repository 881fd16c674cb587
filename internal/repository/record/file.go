package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/appdock/appdock/internal/config"
)

// ErrNotFound is returned when no record exists for the requested slug.
var ErrNotFound = errors.New("installation record not found")

// Record captures the artifacts an installation produced.
type Record struct {
	// Slug is the machine name the installation is keyed by.
	Slug string `yaml:"slug"`
	// Name is the human-readable application name.
	Name string `yaml:"name"`
	// Version is the installed release identifier, if known.
	Version string `yaml:"version,omitempty"`
	// BundlePath is the relocated bundle file.
	BundlePath string `yaml:"bundle_path"`
	// Checksum is the SHA-512 digest of the installed bundle, hex-encoded.
	Checksum string `yaml:"checksum"`
	// WrapperPath is the stable command installed on the system path.
	WrapperPath string `yaml:"wrapper_path,omitempty"`
	// WrapperStyle records whether the wrapper is a script or a symlink.
	WrapperStyle string `yaml:"wrapper_style,omitempty"`
	// DesktopEntryPath is the launcher descriptor file.
	DesktopEntryPath string `yaml:"desktop_entry_path,omitempty"`
	// IconPath is the installed icon file.
	IconPath string `yaml:"icon_path,omitempty"`
	// IconSize is the theme bucket the icon was installed into.
	IconSize int `yaml:"icon_size,omitempty"`
	// InstalledAt is when the installation finished.
	InstalledAt time.Time `yaml:"installed_at"`
}

// Repository defines persistence operations for installation records.
type Repository interface {
	List(ctx context.Context) ([]*Record, error)
	Get(ctx context.Context, slug string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, slug string) error
}

// FileRepository persists records to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the record file.
	path string
	// mu protects concurrent access to the record file.
	mu sync.Mutex
}

// storeFile is the on-disk layout: records keyed by slug.
type storeFile struct {
	Records map[string]*Record `yaml:"records"`
}

// NewFileRepository creates a repository that reads and writes YAML at the
// provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// List returns all records ordered by slug.
func (r *FileRepository) List(_ context.Context) ([]*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load()
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(store.Records))
	for _, rec := range store.Records {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Slug < records[j].Slug
	})

	return records, nil
}

// Get returns the record for the slug, or ErrNotFound.
func (r *FileRepository) Get(_ context.Context, slug string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load()
	if err != nil {
		return nil, err
	}

	rec, ok := store.Records[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}

	return rec, nil
}

// Put inserts or replaces the record for its slug.
func (r *FileRepository) Put(_ context.Context, rec *Record) error {
	if rec == nil || rec.Slug == "" {
		return errors.New("record must carry a slug")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load()
	if err != nil {
		return err
	}

	store.Records[rec.Slug] = rec

	return r.save(store)
}

// Delete removes the record for the slug, or returns ErrNotFound.
func (r *FileRepository) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load()
	if err != nil {
		return err
	}

	if _, ok := store.Records[slug]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, slug)
	}

	delete(store.Records, slug)

	return r.save(store)
}

// load reads the store from disk. A missing file is an empty store.
func (r *FileRepository) load() (*storeFile, error) {
	store := &storeFile{Records: make(map[string]*Record)}

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}

		return nil, fmt.Errorf("read record file: %w", err)
	}

	if err = yaml.Unmarshal(contents, store); err != nil {
		return nil, fmt.Errorf("decode record file: %w", err)
	}

	if store.Records == nil {
		store.Records = make(map[string]*Record)
	}

	return store, nil
}

// save writes the store to disk, creating the state directory as needed.
func (r *FileRepository) save(store *storeFile) error {
	data, err := yaml.Marshal(store)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}

	return nil
}

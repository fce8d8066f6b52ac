package storage

import (
	"context"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FilesystemStorage implements the Storage interface against the local
// filesystem. It is used for standalone deployments and tests.
type FilesystemStorage struct {
	Config Config
}

// NewFilesystemStorage returns a Storage backed by the local filesystem.
func NewFilesystemStorage(config Config) FilesystemStorage {
	return FilesystemStorage{
		Config: config,
	}
}

// Write writes the data to the key under the bucket root.
func (f FilesystemStorage) Write(ctx context.Context, key string, body []byte,
	options *Options) error {

	if options == nil {
		opts := NewOptions()
		options = &opts
	}

	filename := f.buildPath(key)

	dir := path.Dir(filename)
	if err := f.ensureExists(dir, options); err != nil {
		return err
	}

	mode := options.Mode
	if mode == 0 {
		mode = 0644
	}

	return ioutil.WriteFile(filename, body, mode)
}

// Read reads the data stored at the key.
func (f FilesystemStorage) Read(ctx context.Context, key string) ([]byte, error) {
	filename := f.buildPath(key)

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, ErrNotFound
	}

	return ioutil.ReadFile(filename)
}

// Remove removes the object stored at the key.
func (f FilesystemStorage) Remove(ctx context.Context, key string) error {
	filename := f.buildPath(key)

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return ErrNotFound
	}

	return os.Remove(filename)
}

// List returns the keys of all objects stored under the path.
func (f FilesystemStorage) List(ctx context.Context, keyPrefix string) ([]string, error) {
	dir := f.buildPath(keyPrefix)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(files))
	for _, info := range files {
		if info.IsDir() {
			continue
		}
		keys = append(keys, strings.Join([]string{keyPrefix, info.Name()}, "/"))
	}

	return keys, nil
}

func (f FilesystemStorage) buildPath(key string) string {
	parts := []string{
		f.Config.Root,
		f.Config.Bucket,
	}

	if len(key) > 0 {
		parts = append(parts, key)
	}

	return filepath.FromSlash(strings.Join(parts, "/"))
}

func (f FilesystemStorage) ensureExists(dir string, options *Options) error {
	mode := options.DirMode
	if mode == 0 {
		mode = 0755
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, mode)
	}

	return nil
}

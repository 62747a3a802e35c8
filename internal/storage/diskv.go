package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvStore keeps one file per key under a base directory.
type DiskvStore struct {
	d *diskv.Diskv
}

func OpenDiskv(dir string) (*DiskvStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("diskv dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create diskv dir: %w", err)
	}
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 64 * 1024,
	})}, nil
}

func (s *DiskvStore) Get(key string) (string, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(val), nil
}

func (s *DiskvStore) Set(key, value string) error {
	return s.d.Write(key, []byte(value))
}

func (s *DiskvStore) Close() error {
	return nil
}

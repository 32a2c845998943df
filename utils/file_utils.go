package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	downloadTmpPattern = ".*.downloading"
	defaultFileMode    = 0644
)

// WriteFileAtomic saves data as dst through a hidden tmp file in the same
// directory, dst is either the old content or the new one, never partial.
// An existing dst keeps its permission bits. Returns the checksum of data.
func WriteFileAtomic(dst string, data []byte) (string, error) {
	dir, name := filepath.Split(dst)
	if len(dir) == 0 {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create directory failed, dir:%s, err:%w", dir, err)
	}
	mode := os.FileMode(defaultFileMode)
	if st, err := os.Stat(dst); err == nil && st.Mode().IsRegular() {
		mode = st.Mode().Perm()
	}
	f, err := os.CreateTemp(dir, "."+name+downloadTmpPattern)
	if err != nil {
		return "", fmt.Errorf("create tmp file failed, err:%w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write tmp file failed, err:%w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("sync tmp file failed, err:%w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close tmp file failed, err:%w", err)
	}
	if err := os.Chmod(tmp, mode); err != nil {
		return "", fmt.Errorf("chmod tmp file failed, err:%w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", fmt.Errorf("rename tmp file failed, dst:%s, err:%w", dst, err)
	}
	return ContentChecksum(data), nil
}

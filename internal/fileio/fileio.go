// Package fileio loads minified source bundles for extraction,
// mirroring the content-loading style the rest of this codebase uses:
// read once, compute a fast content hash up front for cache-key and
// change-detection purposes, and read very large files through an
// mmap rather than os.ReadFile. Source.Text is always a Go string, so
// a mapped file's bytes are still copied into the heap once.
package fileio

import (
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	jsscopeserrors "github.com/standardbeagle/jsscopes/internal/errors"
)

// mmapThreshold is the file size above which Source maps the file
// instead of reading it into a []byte. Below this, a plain ReadFile
// is cheaper because it avoids a syscall round trip and page faults
// for content that's about to be walked front to back anyway.
const mmapThreshold = 8 * 1024 * 1024

// Source is a loaded bundle: its text content plus a fast fingerprint
// used as a cache key by internal/scopecache. Close releases the
// backing mmap, if one was used; it is always safe to call, even for
// small files that were read normally.
type Source struct {
	Path       string
	Text       string
	Fingerprint uint64

	region mmap.MMap
}

// Load reads path, choosing between a plain read and an mmap based on
// file size. The returned Source owns whatever OS resources it took;
// callers must call Close when done.
func Load(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, jsscopeserrors.NewFileError("stat", path, err)
	}

	if info.Size() < mmapThreshold {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, jsscopeserrors.NewFileError("read", path, err)
		}
		return &Source{
			Path:        path,
			Text:        string(data),
			Fingerprint: xxhash.Sum64(data),
		}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, jsscopeserrors.NewFileError("open", path, err)
	}
	defer f.Close()

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, jsscopeserrors.NewFileError("mmap", path, err)
	}

	return &Source{
		Path:        path,
		Text:        string(region),
		Fingerprint: xxhash.Sum64(region),
		region:      region,
	}, nil
}

// Close releases the backing mmap region, if any.
func (s *Source) Close() error {
	if s.region == nil {
		return nil
	}
	err := s.region.Unmap()
	s.region = nil
	return err
}

package apoe

import (
	"context"
	"io"
	"io/ioutil"
	"os/user"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// ExpandHome expands ~ to its proper path, where appropriate.
func ExpandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			return path, pfx.Err(err)
		}
		path = filepath.Join(usr.HomeDir, path[2:])
	}

	return path, nil
}

// IsGoogleStorage reports whether any of the paths must be fetched from Google
// Storage. Binaries use it to decide whether to construct a storage client.
func IsGoogleStorage(paths ...string) bool {
	for _, p := range paths {
		if strings.HasPrefix(p, "gs://") {
			return true
		}
	}

	return false
}

// Open opens a local or gs:// path and transparently decompresses it. client
// may be nil when no gs:// path is used.
func Open(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	rs, _, err := MaybeOpenSeekerFromGoogleStorage(ctx, path, client)
	if err != nil {
		return nil, pfx.Err(err)
	}

	rc, err := MaybeDecompress(rs)
	if err != nil {
		rs.Close()
		return nil, pfx.Err(err)
	}

	return rc, nil
}

// ReadAll is Open followed by a full read.
func ReadAll(ctx context.Context, path string, client *storage.Client) ([]byte, error) {
	rc, err := Open(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := ioutil.ReadAll(rc)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return b, nil
}

package apoe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// LocalCopy returns a local filename for path. Readers that need a real file,
// such as SQLite for a .bgi index, cannot read over the wire, so gs:// objects
// are copied to a uniquely named temporary file which cleanup removes. Local
// paths are returned as-is with a no-op cleanup.
func LocalCopy(ctx context.Context, path string, client *storage.Client) (local string, cleanup func(), err error) {
	cleanup = func() {}

	if !strings.HasPrefix(path, "gs://") {
		local, err = ExpandHome(path)
		return local, cleanup, err
	}

	if client == nil {
		return "", cleanup, fmt.Errorf("%s is in Google Storage but no storage client was provided", path)
	}

	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 {
		return "", cleanup, fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	rc, err := client.Bucket(pathParts[0]).Object(pathParts[1]).NewReader(ctx)
	if err != nil {
		return "", cleanup, pfx.Err(fmt.Sprintf("%v (%s)", err, path))
	}
	defer rc.Close()

	// Keep the extension: some readers sniff it.
	f, err := os.CreateTemp("", "apoe_*_"+filepath.Base(pathParts[1]))
	if err != nil {
		return "", cleanup, pfx.Err(err)
	}
	remove := func() { os.Remove(f.Name()) }

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		remove()
		return "", cleanup, pfx.Err(err)
	}
	if err := f.Close(); err != nil {
		remove()
		return "", cleanup, pfx.Err(err)
	}

	return f.Name(), remove, nil
}

package content

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/nwaples/rardecode/v2"

	rterrors "github.com/wippyai/retro-runtime/errors"
)

func openFailed(kind string, err error) error {
	return rterrors.Wrap(rterrors.PhaseContent, rterrors.KindInvalidData, err, "open "+kind)
}

func extractZIP(path string, extensions []string, member memberFunc) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return openFailed("zip", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !wanted(f.Name, extensions) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return openFailed(f.Name, err)
		}
		defer rc.Close()
		return member(f.Name, rc)
	}
	return noMember(path)
}

func extract7z(path string, extensions []string, member memberFunc) error {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return openFailed("7z", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !wanted(f.Name, extensions) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return openFailed(f.Name, err)
		}
		defer rc.Close()
		return member(f.Name, rc)
	}
	return noMember(path)
}

// extractGzip handles both tar.gz and a single gzipped file. A plain .gz
// member is named after the archive without its .gz suffix.
func extractGzip(path string, extensions []string, member memberFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return openFailed("gzip", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return openFailed("gzip", err)
	}
	defer gr.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return extractTar(path, gr, extensions, member)
	}
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return member(name, gr)
}

func extractTar(path string, r io.Reader, extensions []string, member memberFunc) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return noMember(path)
		}
		if err != nil {
			return openFailed("tar entry", err)
		}
		if hdr.Typeflag != tar.TypeReg || !wanted(hdr.Name, extensions) {
			continue
		}
		return member(hdr.Name, tr)
	}
}

func extractRAR(path string, extensions []string, member memberFunc) error {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return openFailed("rar", err)
	}
	defer r.Close()

	for {
		hdr, err := r.Next()
		if err == io.EOF {
			return noMember(path)
		}
		if err != nil {
			return openFailed("rar entry", err)
		}
		if hdr.IsDir || !wanted(hdr.Name, extensions) {
			continue
		}
		return member(hdr.Name, r)
	}
}

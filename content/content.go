// Package content loads game content for a core, including content packed
// in ZIP, 7z, gzip, tar.gz and RAR archives.
package content

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	rterrors "github.com/wippyai/retro-runtime/errors"
)

var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06}
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21}
)

// DefaultMaxSize bounds content read into memory when Options.MaxSize is 0.
const DefaultMaxSize = 512 << 20

type format int

const (
	formatUnknown format = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

func (f format) String() string {
	switch f {
	case formatRaw:
		return "raw"
	case formatZIP:
		return "zip"
	case format7z:
		return "7z"
	case formatGzip:
		return "gzip"
	case formatRAR:
		return "rar"
	}
	return "unknown"
}

// Content is one piece of content as handed to retro_load_game.
//
// Path is the file the core should open. For archive members loaded into
// memory it is the virtual "archive#member" path. Data is nil when the
// core loads from Path itself.
type Content struct {
	Path string
	Name string // base name without extension
	Ext  string // lower case, no dot
	Data []byte
	Meta string

	ArchivePath string
	ArchiveFile string

	// TempDir holds a member extracted for a core that needs a real path.
	// Release removes it.
	TempDir string
}

// Dir is the directory the content came from. Archive members report the
// archive's directory.
func (c Content) Dir() string {
	if c.ArchivePath != "" {
		return filepath.Dir(c.ArchivePath)
	}
	if c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

// InArchive reports whether the content is a member of an archive.
func (c Content) InArchive() bool { return c.ArchivePath != "" }

// Release removes any files extracted for the content.
func (c Content) Release() error {
	if c.TempDir == "" {
		return nil
	}
	return os.RemoveAll(c.TempDir)
}

// Options control how Load reads content.
type Options struct {
	// NeedFullpath is set for cores that open content themselves. Raw files
	// are then not read at all and archive members are extracted to disk.
	NeedFullpath bool
	// BlockExtract keeps archives intact. The core receives the archive
	// path, as cores that understand the archive format expect.
	BlockExtract bool
	// ExtractDir is where members are extracted for NeedFullpath cores. A
	// fresh temporary directory is used when empty.
	ExtractDir string
	// MaxSize bounds content read into memory. Zero means DefaultMaxSize.
	MaxSize int64
}

func (o Options) maxSize() int64 {
	if o.MaxSize > 0 {
		return o.MaxSize
	}
	return DefaultMaxSize
}

// Extensions splits a retro_system_info valid_extensions string such as
// "sfc|smc" into dotted extensions.
func Extensions(valid string) []string {
	var out []string
	for _, e := range strings.Split(valid, "|") {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			out = append(out, "."+strings.ToLower(e))
		}
	}
	return out
}

// FromBytes wraps in-memory content. name is used for Name and Ext only.
func FromBytes(name string, data []byte) Content {
	c := Content{Path: name, Data: data}
	c.Name, c.Ext = splitName(name)
	return c
}

// Load reads the content at path. Archives are detected by magic bytes and
// then by extension; the first member matching extensions is used. Files
// that are not archives must carry one of extensions unless extensions is
// empty.
func Load(path string, extensions []string, opts Options) (Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return Content{}, rterrors.Wrap(rterrors.PhaseContent, rterrors.KindNotFound, err, "open content")
	}
	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	_ = f.Close()
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Content{}, rterrors.Wrap(rterrors.PhaseContent, rterrors.KindInvalidData, err, "read content header")
	}

	ft := detectFormat(header[:n], path, extensions)
	if ft != formatRaw && ft != formatUnknown && opts.BlockExtract {
		ft = formatRaw
	}
	switch ft {
	case formatRaw:
		return loadRaw(path, opts)
	case formatUnknown:
		return Content{}, rterrors.Unsupported(rterrors.PhaseContent, fmt.Sprintf("content format of %s", filepath.Base(path)))
	}

	var extract func(string, []string, memberFunc) error
	switch ft {
	case formatZIP:
		extract = extractZIP
	case format7z:
		extract = extract7z
	case formatGzip:
		extract = extractGzip
	case formatRAR:
		extract = extractRAR
	}

	c := Content{ArchivePath: path}
	sink := memorySink(&c, opts.maxSize())
	if opts.NeedFullpath {
		if sink, err = diskSink(&c, opts); err != nil {
			return Content{}, err
		}
	}
	if err := extract(path, extensions, sink); err != nil {
		_ = c.Release()
		return Content{}, err
	}
	c.Name, c.Ext = splitName(c.ArchiveFile)
	if !opts.NeedFullpath {
		c.Path = path + "#" + c.ArchiveFile
	}
	return c, nil
}

func loadRaw(path string, opts Options) (Content, error) {
	c := Content{Path: path}
	c.Name, c.Ext = splitName(path)
	if opts.NeedFullpath {
		return c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Content{}, rterrors.Wrap(rterrors.PhaseContent, rterrors.KindNotFound, err, "open content")
	}
	defer f.Close()
	if c.Data, err = limitedRead(f, opts.maxSize()); err != nil {
		return Content{}, err
	}
	return c, nil
}

// memberFunc receives the chosen archive member.
type memberFunc func(name string, r io.Reader) error

func memorySink(c *Content, limit int64) memberFunc {
	return func(name string, r io.Reader) error {
		data, err := limitedRead(r, limit)
		if err != nil {
			return err
		}
		c.ArchiveFile = name
		c.Data = data
		return nil
	}
}

func diskSink(c *Content, opts Options) (memberFunc, error) {
	dir := opts.ExtractDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "retro-content-")
		if err != nil {
			return nil, rterrors.Wrap(rterrors.PhaseContent, rterrors.KindInvalidInput, err, "create extraction directory")
		}
		dir = tmp
		c.TempDir = tmp
	}
	return func(name string, r io.Reader) error {
		dst := filepath.Join(dir, filepath.Base(name))
		f, err := os.Create(dst)
		if err != nil {
			return rterrors.Wrap(rterrors.PhaseContent, rterrors.KindInvalidInput, err, "create extracted file")
		}
		defer f.Close()
		if _, err := io.Copy(f, r); err != nil {
			return rterrors.Wrap(rterrors.PhaseContent, rterrors.KindInvalidData, err, "extract "+name)
		}
		c.ArchiveFile = name
		c.Path = dst
		return nil
	}, nil
}

func detectFormat(header []byte, path string, extensions []string) format {
	if len(header) >= 4 {
		if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
			return formatZIP
		}
		if bytes.HasPrefix(header, magicRAR) {
			return formatRAR
		}
	}
	if bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	lower := strings.ToLower(path)
	ext := filepath.Ext(lower)
	switch ext {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}
	if len(extensions) == 0 || matchesExt(lower, extensions) {
		return formatRaw
	}
	return formatUnknown
}

func matchesExt(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// wanted reports whether an archive member should be loaded. With no
// extensions the first member wins.
func wanted(name string, extensions []string) bool {
	return len(extensions) == 0 || matchesExt(name, extensions)
}

func limitedRead(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, rterrors.Wrap(rterrors.PhaseContent, rterrors.KindInvalidData, err, "read content")
	}
	if int64(len(data)) > limit {
		return nil, rterrors.InvalidInput(rterrors.PhaseContent, fmt.Sprintf("content exceeds %d bytes", limit))
	}
	return data, nil
}

func splitName(path string) (name, ext string) {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[i+1:]
	}
	e := filepath.Ext(base)
	return strings.TrimSuffix(base, e), strings.ToLower(strings.TrimPrefix(e, "."))
}

func noMember(archive string) error {
	return rterrors.NotFound(rterrors.PhaseContent, "content in archive", filepath.Base(archive))
}

package content

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	rterrors "github.com/wippyai/retro-runtime/errors"
)

var testExtensions = []string{".sfc", ".smc"}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func zipFile(t *testing.T, name string, members map[string][]byte, order []string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range order {
		fw, err := w.Create(m)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := fw.Write(members[m]); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return writeFile(t, name, buf.Bytes())
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func tarBytes(t *testing.T, name string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	if err := w.WriteHeader(&tar.Header{Name: "readme.txt", Mode: 0o644, Size: 2, Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := w.Write([]byte("hi")); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	if err := w.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(data)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	return buf.Bytes()
}

func TestLoadRaw(t *testing.T) {
	rom := []byte{1, 2, 3, 4}
	path := writeFile(t, "Game.SFC", rom)

	c, err := Load(path, testExtensions, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(c.Data, rom) {
		t.Errorf("data = %v, want %v", c.Data, rom)
	}
	if c.Name != "Game" || c.Ext != "sfc" {
		t.Errorf("name/ext = %q/%q", c.Name, c.Ext)
	}
	if c.InArchive() {
		t.Error("raw content reported in archive")
	}
	if c.Dir() != filepath.Dir(path) {
		t.Errorf("dir = %q", c.Dir())
	}
}

func TestLoadRawFullpathSkipsRead(t *testing.T) {
	path := writeFile(t, "game.sfc", []byte{9, 9})
	c, err := Load(path, testExtensions, Options{NeedFullpath: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Data != nil {
		t.Errorf("data read for fullpath core: %v", c.Data)
	}
	if c.Path != path {
		t.Errorf("path = %q, want %q", c.Path, path)
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("text"))
	_, err := Load(path, testExtensions, Options{})
	if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseContent, Kind: rterrors.KindUnsupported}) {
		t.Fatalf("err = %v, want unsupported", err)
	}
}

func TestLoadSizeLimit(t *testing.T) {
	path := writeFile(t, "big.sfc", make([]byte, 64))
	_, err := Load(path, testExtensions, Options{MaxSize: 32})
	if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseContent, Kind: rterrors.KindInvalidInput}) {
		t.Fatalf("err = %v, want size limit", err)
	}
	if _, err := Load(path, testExtensions, Options{MaxSize: 64}); err != nil {
		t.Fatalf("exact limit rejected: %v", err)
	}
}

func TestLoadZIP(t *testing.T) {
	rom := []byte("zip rom")
	path := zipFile(t, "pack.zip", map[string][]byte{
		"readme.txt":      []byte("skip"),
		"roms/Hero.smc":   rom,
		"roms/Second.sfc": []byte("later"),
	}, []string{"readme.txt", "roms/Hero.smc", "roms/Second.sfc"})

	c, err := Load(path, testExtensions, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(c.Data, rom) {
		t.Errorf("data = %q", c.Data)
	}
	if c.ArchivePath != path || c.ArchiveFile != "roms/Hero.smc" {
		t.Errorf("archive = %q / %q", c.ArchivePath, c.ArchiveFile)
	}
	if c.Path != path+"#roms/Hero.smc" {
		t.Errorf("path = %q", c.Path)
	}
	if c.Name != "Hero" || c.Ext != "smc" {
		t.Errorf("name/ext = %q/%q", c.Name, c.Ext)
	}
	if !c.InArchive() || c.Dir() != filepath.Dir(path) {
		t.Errorf("InArchive=%v Dir=%q", c.InArchive(), c.Dir())
	}
}

func TestLoadZIPDetectedByMagic(t *testing.T) {
	path := zipFile(t, "pack.bin", map[string][]byte{"a.sfc": {7}}, []string{"a.sfc"})
	c, err := Load(path, testExtensions, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ArchiveFile != "a.sfc" {
		t.Errorf("member = %q", c.ArchiveFile)
	}
}

func TestLoadZIPWithoutMatch(t *testing.T) {
	path := zipFile(t, "pack.zip", map[string][]byte{"a.txt": {1}}, []string{"a.txt"})
	_, err := Load(path, testExtensions, Options{})
	if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseContent, Kind: rterrors.KindNotFound}) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestLoadZIPFullpathExtracts(t *testing.T) {
	rom := []byte("extract me")
	path := zipFile(t, "pack.zip", map[string][]byte{"dir/game.sfc": rom}, []string{"dir/game.sfc"})

	c, err := Load(path, testExtensions, Options{NeedFullpath: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer c.Release()
	if c.Data != nil {
		t.Error("fullpath content carries data")
	}
	if c.TempDir == "" || filepath.Dir(c.Path) != c.TempDir {
		t.Fatalf("path %q not in temp dir %q", c.Path, c.TempDir)
	}
	got, err := os.ReadFile(c.Path)
	if err != nil {
		t.Fatalf("read extracted: %v", err)
	}
	if !bytes.Equal(got, rom) {
		t.Errorf("extracted = %q", got)
	}
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(c.TempDir); !os.IsNotExist(err) {
		t.Errorf("temp dir still present: %v", err)
	}
}

func TestLoadBlockExtract(t *testing.T) {
	path := zipFile(t, "set.zip", map[string][]byte{"a.sfc": {1}}, []string{"a.sfc"})
	c, err := Load(path, []string{".zip"}, Options{BlockExtract: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.InArchive() || c.Ext != "zip" || len(c.Data) == 0 {
		t.Errorf("content = %+v", c)
	}
}

func TestLoadGzip(t *testing.T) {
	rom := []byte("gz rom")
	path := writeFile(t, "game.sfc.gz", gzipBytes(t, rom))
	c, err := Load(path, testExtensions, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(c.Data, rom) || c.ArchiveFile != "game.sfc" {
		t.Errorf("data=%q member=%q", c.Data, c.ArchiveFile)
	}
}

func TestLoadTarGz(t *testing.T) {
	rom := []byte("tar rom")
	path := writeFile(t, "bundle.tar.gz", gzipBytes(t, tarBytes(t, "x/game.smc", rom)))
	c, err := Load(path, testExtensions, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(c.Data, rom) || c.ArchiveFile != "x/game.smc" {
		t.Errorf("data=%q member=%q", c.Data, c.ArchiveFile)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		path   string
		want   format
	}{
		{"zip magic", []byte{0x50, 0x4B, 0x03, 0x04}, "x.bin", formatZIP},
		{"empty zip magic", []byte{0x50, 0x4B, 0x05, 0x06}, "x.bin", formatZIP},
		{"7z magic", []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, "x.bin", format7z},
		{"gzip magic", []byte{0x1F, 0x8B, 0x08}, "x.bin", formatGzip},
		{"rar magic", []byte("Rar!\x1a\x07"), "x.bin", formatRAR},
		{"7z by extension", nil, "x.7z", format7z},
		{"rar by extension", nil, "x.RAR", formatRAR},
		{"tgz by extension", nil, "x.tgz", formatGzip},
		{"rom extension", []byte{0, 1, 2, 3}, "x.smc", formatRaw},
		{"unknown", []byte{0, 1, 2, 3}, "x.txt", formatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.header, tt.path, testExtensions); got != tt.want {
				t.Errorf("detectFormat = %v, want %v", got, tt.want)
			}
		})
	}
	if got := detectFormat([]byte{0, 0, 0, 0}, "x.anything", nil); got != formatRaw {
		t.Errorf("no extensions = %v, want raw", got)
	}
}

func TestExtensions(t *testing.T) {
	got := Extensions("sfc|SMC| .bin ||")
	want := []string{".sfc", ".smc", ".bin"}
	if len(got) != len(want) {
		t.Fatalf("Extensions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Extensions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFromBytes(t *testing.T) {
	c := FromBytes("/roms/Some Game.GBA", []byte{1})
	if c.Name != "Some Game" || c.Ext != "gba" || c.Dir() != "/roms" {
		t.Errorf("content = %+v dir=%q", c, c.Dir())
	}
}

package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ListFiles returns the journal files of dir, oldest first.
func ListFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, filePrefix+"-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// Reader iterates the entries of a list of journal files in order.
type Reader struct {
	files []string
	next  int

	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner

	cur Entry
	err error
}

// OpenDir reads every journal file of dir.
func OpenDir(dir string) (*Reader, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no journal files in %s", dir)
	}
	return NewReader(files), nil
}

func NewReader(files []string) *Reader {
	return &Reader{files: files}
}

// Next advances to the next entry. It returns false at the end or on error; check Err.
func (r *Reader) Next() bool {
	for r.err == nil {
		if r.sc == nil {
			if r.next >= len(r.files) {
				return false
			}
			if r.err = r.open(r.files[r.next]); r.err != nil {
				return false
			}
			r.next++
		}
		if r.sc.Scan() {
			line := r.sc.Bytes()
			if len(strings.TrimSpace(string(line))) == 0 {
				continue
			}
			var e Entry
			if err := json.Unmarshal(line, &e); err != nil {
				r.err = fmt.Errorf("%s: unmarshal: %w", filepath.Base(r.files[r.next-1]), err)
				return false
			}
			r.cur = e
			return true
		}
		if err := r.sc.Err(); err != nil && err != io.ErrUnexpectedEOF {
			r.err = fmt.Errorf("%s: %w", filepath.Base(r.files[r.next-1]), err)
		}
		r.closeFile()
	}
	return false
}

func (r *Reader) Entry() Entry { return r.cur }
func (r *Reader) Err() error   { return r.err }

func (r *Reader) Close() error {
	r.closeFile()
	return nil
}

func (r *Reader) open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	r.f, r.dec, r.sc = f, dec, sc
	return nil
}

func (r *Reader) closeFile() {
	if r.dec != nil {
		r.dec.Close()
		r.dec = nil
	}
	if r.f != nil {
		_ = r.f.Close()
		r.f = nil
	}
	r.sc = nil
}

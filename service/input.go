package service

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lf "github.com/sirupsen/logrus"
)

// Stdin is the path naming the standard input.
const Stdin = "-"

var stdin = os.Stdin

// Expand resolves the path arguments of a run into the ordered list of inputs.
// Glob patterns (including **) are expanded to the files they match. Standard
// input appears at most once, first when requested through withStdin.
func Expand(paths []string, withStdin bool, log *lf.Entry) []string {
	var inputs []string
	hasStdin := false
	addStdin := func() {
		if !hasStdin {
			inputs = append(inputs, Stdin)
			hasStdin = true
		}
	}
	if withStdin {
		addStdin()
	}

	for _, p := range paths {
		if p == Stdin {
			addStdin()
			continue
		}
		if !strings.ContainsAny(p, "*?[{") {
			inputs = append(inputs, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			log.WithField("pattern", p).Error("Invalid glob pattern: ", err)
			continue
		}
		if len(matches) == 0 {
			// a file literally named like a pattern
			if _, err := os.Stat(p); err == nil {
				inputs = append(inputs, p)
				continue
			}
			log.WithField("pattern", p).Warn("No input matches pattern")
			continue
		}
		inputs = append(inputs, matches...)
	}
	return inputs
}

// source is one opened input. Gzip inputs are decompressed on the fly.
type source struct {
	io.Reader
	name string
	file *os.File
	gz   *gzip.Reader
}

func openSource(name string, bufSize int) (*source, error) {
	f := stdin
	if name != Stdin {
		var err error
		if f, err = os.Open(name); err != nil {
			return nil, err
		}
	}
	r, gz, err := decode(f, bufSize)
	if err != nil {
		if name != Stdin {
			f.Close()
		}
		return nil, err
	}
	return &source{Reader: r, name: name, file: f, gz: gz}, nil
}

// decode peeks at the first bytes of r and wraps it in a gzip reader when
// they carry the gzip magic.
func decode(r io.Reader, bufSize int) (io.Reader, *gzip.Reader, error) {
	br := bufio.NewReaderSize(r, bufSize)
	hdr, err := br.Peek(2)
	if err != nil || hdr[0] != 0x1f || hdr[1] != 0x8b {
		return br, nil, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, nil, err
	}
	return gz, gz, nil
}

// followable reports whether appended bytes can be picked up later.
func (s *source) followable() bool {
	return s.gz == nil && s.name != Stdin
}

func (s *source) Close() error {
	if s.gz != nil {
		s.gz.Close()
	}
	if s.name == Stdin {
		return nil
	}
	return s.file.Close()
}

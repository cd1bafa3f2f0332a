package provgraph

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	filePerm = 0o644
	indent   = "  "
)

// Encode writes g to w as indented JSON with sorted keys at every level.
func Encode(w io.Writer, g *Graph) error {
	return EncodeValue(w, g.document())
}

// EncodeValue writes any decoded JSON value the same way Encode writes a
// graph. HTML characters are not escaped.
func EncodeValue(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)

	return enc.Encode(v)
}

// WriteFile encodes g into path. The document is written to a temporary file
// in the same directory and renamed into place, so path is either left
// untouched or holds the complete document.
func WriteFile(path string, g *Graph) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Encode(w, g)
	})
}

// SortFile rewrites the JSON document at src into dst with sorted keys and
// the same indentation as WriteFile. src may hold any JSON value.
func SortFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return errors.Wrapf(err, "decoding %s", src)
	}

	return writeAtomic(dst, func(w io.Writer) error {
		return EncodeValue(w, v)
	})
}

func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for %s", path)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}

	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	if err = tmp.Chmod(filePerm); err != nil {
		return errors.Wrapf(err, "setting permissions on %s", path)
	}

	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "moving output into place at %s", path)
	}

	return nil
}

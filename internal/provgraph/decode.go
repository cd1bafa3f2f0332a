package provgraph

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// LoadFile reads and decodes the document at path.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	g, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	return g, nil
}

// Decode parses a document from r, keeping class and instance order.
// Any top-level entry other than the prefix block must be an object of
// objects.
func Decode(r io.Reader) (*Graph, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectObject(dec, "document"); err != nil {
		return nil, err
	}

	g := New()

	for dec.More() {
		class, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		if class == PrefixKey {
			var prefix map[string]any
			if err := dec.Decode(&prefix); err != nil {
				return nil, errors.Wrap(err, "prefix block")
			}

			if prefix == nil {
				return nil, errors.New("prefix block: expected an object, got null")
			}

			g.Prefix = prefix

			continue
		}

		b, err := decodeBucket(dec, class)
		if err != nil {
			return nil, err
		}

		// Duplicate class keys: the last occurrence wins, as with any JSON object.
		g.Replace(class, b)
	}

	if err := expectEnd(dec, "document"); err != nil {
		return nil, err
	}

	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, errors.Wrap(err, "after document")
		}

		return nil, errors.Newf("unexpected %s after document", describeToken(tok))
	}

	return g, nil
}

func decodeBucket(dec *json.Decoder, class string) (*Bucket, error) {
	if err := expectObject(dec, "class "+class); err != nil {
		return nil, err
	}

	b := NewBucket()

	for dec.More() {
		id, err := readKey(dec)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s", class)
		}

		var inst Instance
		if err := dec.Decode(&inst); err != nil {
			return nil, errors.Wrapf(err, "class %s instance %s", class, id)
		}

		if inst == nil {
			return nil, errors.Newf("class %s instance %s: expected an object of attributes, got null", class, id)
		}

		b.Put(id, inst)
	}

	if err := expectEnd(dec, "class "+class); err != nil {
		return nil, err
	}

	return b, nil
}

func expectObject(dec *json.Decoder, what string) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(noEOF(err), what)
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Newf("%s: expected an object, got %s", what, describeToken(tok))
	}

	return nil
}

func expectEnd(dec *json.Decoder, what string) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(noEOF(err), what)
	}

	if d, ok := tok.(json.Delim); !ok || d != '}' {
		return errors.Newf("%s: expected end of object, got %s", what, describeToken(tok))
	}

	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", noEOF(err)
	}

	key, ok := tok.(string)
	if !ok {
		return "", errors.Newf("expected object key, got %s", describeToken(tok))
	}

	return key, nil
}

// noEOF turns a bare EOF inside a document into ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}

	return err
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '[':
			return "array"
		case '{':
			return "object"
		default:
			return "'" + v.String() + "'"
		}
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "value"
	}
}

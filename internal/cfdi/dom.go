package cfdi

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	utf8BOM     = []byte{0xEF, 0xBB, 0xBF}
	declaration = regexp.MustCompile(`^\s*<\?xml[^>]*?encoding\s*=\s*["']([^"']*)["']`)
)

// element is a minimal DOM node. Names are lower-cased local names without the
// namespace prefix, so "cfdi:Comprobante" and "comprobante" are the same element.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
}

// decodeTree reads the whole document into an element tree and returns its root.
func decodeTree(data []byte) (*element, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if isUTF8Label(declaredEncoding(data)) && !utf8.Valid(data) {
		data = repairUTF8(data)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = charsetReader

	var root *element
	var stack []*element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				name:  strings.ToLower(t.Name.Local),
				attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				key := strings.ToLower(a.Name.Local)
				if _, dup := el.attrs[key]; !dup {
					el.attrs[key] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return root, nil
}

// declaredEncoding returns the encoding named in the XML declaration, or "".
func declaredEncoding(data []byte) string {
	m := declaration.FindSubmatch(data)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// isUTF8Label reports whether the label means UTF-8. An empty label defaults to UTF-8.
func isUTF8Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// repairUTF8 keeps valid UTF-8 sequences and decodes every stray byte as Windows-1252.
func repairUTF8(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/8)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			r = charmap.Windows1252.DecodeByte(data[0])
		}
		out = utf8.AppendRune(out, r)
		data = data[size:]
	}
	return out
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf8":
		return input, nil
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, label)
	}
}

// attr returns the attribute value and whether it was present.
func (e *element) attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.attrs[name]
	return v, ok
}

// child returns the first direct child with the given name.
func (e *element) child(name string) *element {
	if e == nil {
		return nil
	}
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// childrenNamed returns the direct children with the given name, in document order.
func (e *element) childrenNamed(name string) []*element {
	if e == nil {
		return nil
	}
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// find returns the first element with the given name in depth-first document
// order, starting with e itself.
func (e *element) find(name string) *element {
	if e == nil {
		return nil
	}
	if e.name == name {
		return e
	}
	for _, c := range e.children {
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

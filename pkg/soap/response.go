package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Fault is a SOAP fault returned by the server in place of a result.
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

// StatusError is a non-2xx HTTP response from the SOAP endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("soap endpoint returned status %d", e.StatusCode)
}

// parseFault returns the fault if the first element of the response body
// is a SOAP fault, nil otherwise.
func parseFault(respBody []byte) (*Fault, error) {
	dec := xml.NewDecoder(bytes.NewReader(respBody))

	inBody := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !inBody {
			if se.Name.Local == "Body" {
				inBody = true
			}
			continue
		}
		if se.Name.Local != "Fault" {
			return nil, nil
		}

		fault := &Fault{}
		if err := dec.DecodeElement(fault, &se); err != nil {
			return nil, err
		}
		return fault, nil
	}
}

// Node is one element of a decoded rpc/encoded response tree. PHP-SOAP
// maps come back as item lists where every item holds a key and a value,
// and the value may itself be another map.
type Node struct {
	Key   string `xml:"key"`
	Value *Node  `xml:"value"`
	Items []Node `xml:"item"`
	Text  string `xml:",chardata"`
}

// Values flattens the node's map entries into a key to scalar-text
// lookup. Entries with empty text are treated as absent, matching how
// the server encodes unset fields.
type Values map[string]string

func (n *Node) Values() Values {
	vals := make(Values, len(n.Items))
	for i := range n.Items {
		item := &n.Items[i]
		if item.Key == "" || item.Value == nil {
			continue
		}
		text := strings.TrimSpace(item.Value.Text)
		if text == "" {
			continue
		}
		vals[item.Key] = text
	}
	return vals
}

// ParseReturn finds the response element with the given local name and
// decodes it into a Node tree.
func ParseReturn(respBody []byte, local string) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(respBody))

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("element %q not found in response", local)
		}
		if err != nil {
			return nil, fmt.Errorf("parse response: %w", err)
		}

		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == local {
			node := &Node{}
			if err := dec.DecodeElement(node, &se); err != nil {
				return nil, fmt.Errorf("decode %s: %w", local, err)
			}
			return node, nil
		}
	}
}

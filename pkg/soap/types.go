package soap

import (
	"encoding/xml"
	"fmt"
)

// Typed values for SOAP 1.1 rpc/encoded request bodies. Each one carries
// its xsi:type so PHP-SOAP servers decode parameters without a schema.

type String string

func (s String) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xsiType("xsd:string"))
	return e.EncodeElement(string(s), start)
}

type Int int64

func (i Int) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xsiType("xsd:int"))
	return e.EncodeElement(int64(i), start)
}

type Bool bool

func (b Bool) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xsiType("xsd:boolean"))
	return e.EncodeElement(bool(b), start)
}

// IntArray marshals as a SOAP-encoded array of xsd:int items.
type IntArray []int64

func (a IntArray) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr,
		xsiType("SOAP-ENC:Array"),
		xml.Attr{Name: xml.Name{Local: "SOAP-ENC:arrayType"}, Value: fmt.Sprintf("xsd:int[%d]", len(a))},
	)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, v := range a {
		if err := e.EncodeElement(Int(v), xml.StartElement{Name: xml.Name{Local: "item"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Map marshals as an Apache SOAP ns2:Map, the key/value structure PHP
// associative arrays travel as. Entry order is preserved.
type Map []MapItem

type MapItem struct {
	Key   string
	Value any
}

func (m Map) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xsiType("ns2:Map"))
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, it := range m {
		item := xml.StartElement{Name: xml.Name{Local: "item"}}
		if err := e.EncodeToken(item); err != nil {
			return err
		}
		if err := e.EncodeElement(String(it.Key), xml.StartElement{Name: xml.Name{Local: "key"}}); err != nil {
			return err
		}
		if err := encodeValue(e, "value", it.Value); err != nil {
			return err
		}
		if err := e.EncodeToken(item.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func encodeValue(e *xml.Encoder, name string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}

	switch val := v.(type) {
	case string:
		return e.EncodeElement(String(val), start)
	case int:
		return e.EncodeElement(Int(val), start)
	case int64:
		return e.EncodeElement(Int(val), start)
	case bool:
		return e.EncodeElement(Bool(val), start)
	case []int64:
		return e.EncodeElement(IntArray(val), start)
	case IntArray:
		return e.EncodeElement(val, start)
	case Map:
		return e.EncodeElement(val, start)
	default:
		return fmt.Errorf("soap: unsupported value type %T", v)
	}
}

func xsiType(t string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: "xsi:type"}, Value: t}
}

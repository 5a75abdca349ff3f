// Package crosswalk encodes exported records as OAI metadata formats.
package crosswalk

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/cognicore/folio/pkg/folio/record"
)

// Source produces the values of one element. It is either Direct or
// Computed.
type Source interface {
	values(rec record.Export) ([]string, error)
}

// Direct reads the listed index fields in order and concatenates their
// values.
type Direct []string

func (d Direct) values(rec record.Export) ([]string, error) {
	var out []string
	for _, field := range d {
		vals, err := rec.Strings(field)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

// Computed derives values from the whole record.
type Computed func(rec record.Export) ([]string, error)

func (c Computed) values(rec record.Export) ([]string, error) {
	return c(rec)
}

// Element is one output tag, written once per value.
type Element struct {
	Name   string
	Source Source
}

// Vocabulary groups the elements written under one namespace prefix.
type Vocabulary struct {
	Prefix   string
	Elements []Element
}

// Format is a metadata format with a fixed root element and mapping.
type Format struct {
	Prefix           string
	Schema           string
	Namespace        string
	ElementNamespace string
	Attrs            []xml.Attr
	Vocabularies     []Vocabulary
}

// Root returns the qualified root element name, e.g. "oai_cdl:cdl".
func (f *Format) Root() string {
	return f.Prefix + ":" + f.ElementNamespace
}

// Encode renders rec as an XML fragment. Vocabularies and elements are
// written in declaration order and empty values produce no element.
func (f *Format) Encode(rec record.Export) (string, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	root := xml.StartElement{Name: xml.Name{Local: f.Root()}, Attr: f.Attrs}
	if err := enc.EncodeToken(root); err != nil {
		return "", fmt.Errorf("encode %s: %w", f.Prefix, err)
	}
	for _, vocab := range f.Vocabularies {
		for _, el := range vocab.Elements {
			vals, err := el.Source.values(rec)
			if err != nil {
				return "", fmt.Errorf("%s:%s: %w", vocab.Prefix, el.Name, err)
			}
			name := xml.Name{Local: vocab.Prefix + ":" + el.Name}
			for _, v := range vals {
				if v == "" {
					continue
				}
				if err := writeElement(enc, name, v); err != nil {
					return "", fmt.Errorf("encode %s: %w", name.Local, err)
				}
			}
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return "", fmt.Errorf("encode %s: %w", f.Prefix, err)
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeElement(enc *xml.Encoder, name xml.Name, text string) error {
	start := xml.StartElement{Name: name}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

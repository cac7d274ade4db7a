package rss

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"
)

// Attr is a single XML attribute. Names may carry a namespace prefix.
type Attr struct {
	Name  string
	Value string
}

// Element is a node in a small XML tree. An element holds either text or
// children; when both are set only the children are written.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// E creates an element with the given children.
func E(name string, children ...*Element) *Element {
	return &Element{Name: name, Children: children}
}

// T creates a text-only element.
func T(name, text string) *Element {
	return &Element{Name: name, Text: text}
}

// Attr appends an attribute and returns e for chaining.
func (e *Element) Attr(name, value string) *Element {
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Append adds children in order.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Encode writes root as a UTF-8 XML document with a declaration, one element
// per line, indented by two spaces per level.
func Encode(w io.Writer, root *Element) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	root.write(bw, 0)
	bw.WriteByte('\n')
	return bw.Flush()
}

// bufio.Writer keeps the first error and reports it on Flush, so the
// individual writes below are unchecked.
func (e *Element) write(w *bufio.Writer, depth int) {
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(e.Name)
	for _, attr := range e.Attrs {
		w.WriteByte(' ')
		w.WriteString(attr.Name)
		w.WriteString(`="`)
		xml.EscapeText(w, []byte(attr.Value))
		w.WriteByte('"')
	}

	switch {
	case len(e.Children) > 0:
		w.WriteString(">\n")
		for _, child := range e.Children {
			child.write(w, depth+1)
			w.WriteByte('\n')
		}
		w.WriteString(indent)
	case e.Text != "":
		w.WriteByte('>')
		xml.EscapeText(w, []byte(e.Text))
	default:
		w.WriteString("/>")
		return
	}

	w.WriteString("</")
	w.WriteString(e.Name)
	w.WriteByte('>')
}

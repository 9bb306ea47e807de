// Package xmldoc parses the small ad-hoc XML payloads produced by the
// box firmware into a navigable element tree. The decoder runs in
// strict mode with an empty entity table, so payloads cannot smuggle
// entity expansions past it.
package xmldoc

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Element struct {
	Tag      string
	Text     string
	Children []*Element
}

// Parse decodes raw into an element tree and returns the document root.
func Parse(raw string) (root *Element, err error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	decoder.Strict = true
	decoder.Entity = map[string]string{}

	var stack []*Element
	for {
		token, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return nil, fmt.Errorf("Parse: %w", tokenErr)
		}

		switch t := token.(type) {
		case xml.StartElement:
			element := &Element{Tag: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, element)
			} else if root != nil {
				return nil, fmt.Errorf("Parse: multiple document roots")
			} else {
				root = element
			}
			stack = append(stack, element)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("Parse: empty document")
	}

	return root, nil
}

// Find walks a slash-separated child path and returns the first match,
// or nil when any segment is missing.
func (e *Element) Find(path string) *Element {
	current := e
	for _, segment := range strings.Split(path, "/") {
		var next *Element
		for _, child := range current.Children {
			if child.Tag == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}

	return current
}

// FindAll returns every element matching a slash-separated child path,
// in document order.
func (e *Element) FindAll(path string) []*Element {
	current := []*Element{e}
	for _, segment := range strings.Split(path, "/") {
		var next []*Element
		for _, element := range current {
			for _, child := range element.Children {
				if child.Tag == segment {
					next = append(next, child)
				}
			}
		}
		current = next
	}

	return current
}

// Iter returns all descendants with the given tag in document order,
// including the element itself when it matches.
func (e *Element) Iter(tag string) (matches []*Element) {
	if e.Tag == tag {
		matches = append(matches, e)
	}
	for _, child := range e.Children {
		matches = append(matches, child.Iter(tag)...)
	}

	return matches
}

// IterTexts collects the text of all descendants with the given tag.
func (e *Element) IterTexts(tag string) (texts []string) {
	for _, element := range e.Iter(tag) {
		texts = append(texts, element.Text)
	}

	return texts
}

// Str returns the text of the element at path, failing when the
// element is missing.
func (e *Element) Str(path string) (string, error) {
	element := e.Find(path)
	if element == nil {
		return "", fmt.Errorf("Str: missing element %q", path)
	}

	return element.Text, nil
}

// Int returns the text of the element at path coerced to an integer.
func (e *Element) Int(path string) (int, error) {
	text, err := e.Str(path)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("Int: element %q: %w", path, err)
	}

	return value, nil
}

// Float returns the text of the element at path coerced to a float.
func (e *Element) Float(path string) (float64, error) {
	text, err := e.Str(path)
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("Float: element %q: %w", path, err)
	}

	return value, nil
}

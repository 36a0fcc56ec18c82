package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"golang.org/x/net/html/charset"
)

// ParseError сообщает, что ответ сервиса не является корректным Atom-документом.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse atom feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse разбирает Atom-документ в Feed.
// Возвращает *ParseError, если документ не является правильно сформированным XML
// или его корневой элемент не feed.
func Parse(r io.Reader) (*Feed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := checkWellFormed(data); err != nil {
		return nil, &ParseError{Err: err}
	}
	parsed, err := new(atom.Parser).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	f := &Feed{
		ID:      strings.TrimSpace(parsed.ID),
		Title:   parsed.Title,
		Updated: timeOrZero(parsed.UpdatedParsed),
		Entries: make([]Entry, 0, len(parsed.Entries)),
	}
	for _, e := range parsed.Entries {
		if e == nil {
			continue
		}
		f.Entries = append(f.Entries, convertEntry(e))
	}
	return f, nil
}

// checkWellFormed проверяет документ строгим XML-декодером.
// Содержимое после корневого элемента, кроме пробелов и комментариев, - ошибка.
func checkWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel
	depth := 0
	rootSeen := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !rootSeen {
				return errors.New("document has no root element")
			}
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if rootSeen && depth == 0 {
				return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
			}
			rootSeen = true
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return errors.New("unexpected text outside root element")
			}
		}
	}
}

// ParseBytes разбирает документ, уже прочитанный в память.
func ParseBytes(data []byte) (*Feed, error) {
	return Parse(bytes.NewReader(data))
}

func convertEntry(e *atom.Entry) Entry {
	entry := Entry{
		ID:        strings.TrimSpace(e.ID),
		Title:     e.Title,
		Published: timeOrZero(e.PublishedParsed),
		Updated:   timeOrZero(e.UpdatedParsed),
		Summary:   e.Summary,
	}
	if e.Content != nil {
		entry.Content = e.Content.Value
	}
	if len(e.Authors) > 0 && e.Authors[0] != nil {
		entry.Author = e.Authors[0].Name
	}
	for _, c := range e.Categories {
		if c != nil && c.Term != "" {
			entry.Categories = append(entry.Categories, c.Term)
		}
	}
	if e.Source != nil {
		entry.SourceTitle = e.Source.Title
	}
	for _, l := range e.Links {
		if l == nil || l.Href == "" {
			continue
		}
		entry.Links = append(entry.Links, Link{Href: l.Href, Rel: l.Rel, Type: l.Type})
	}
	entry.Link = primaryLink(entry.Links)
	return entry
}

// primaryLink выбирает ссылку rel="alternate" (или без rel), иначе первую.
func primaryLink(links []Link) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
	}
	if len(links) > 0 {
		return links[0].Href
	}
	return ""
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

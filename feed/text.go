package feed

import (
	"strings"

	"golang.org/x/net/html"
)

// Text возвращает тело записи без HTML-разметки, с нормализованными пробелами.
func (e Entry) Text() string {
	return StripMarkup(e.Body())
}

// StripMarkup удаляет теги из HTML-фрагмента и схлопывает пробельные символы.
// Содержимое script и style отбрасывается.
func StripMarkup(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	var sb strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if isSkipped(name) {
				skip++
			}
			sb.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if isSkipped(name) && skip > 0 {
				skip--
			}
			sb.WriteByte(' ')
		case html.SelfClosingTagToken:
			sb.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func isSkipped(tag []byte) bool {
	switch string(tag) {
	case "script", "style":
		return true
	}
	return false
}

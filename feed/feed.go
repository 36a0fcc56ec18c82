// Package feed содержит модель ленты Google Reader и разбор Atom-ответов сервиса.
package feed

import "time"

// Link представляет ссылку записи или ленты (элемент atom:link).
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel,omitempty"`
	Type string `json:"type,omitempty"`
}

// Entry представляет отдельную запись (статью) в ленте.
// Поля, отсутствующие в исходном документе, остаются пустыми:
// строки равны "", время равно нулевому time.Time.
type Entry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Links       []Link    `json:"links,omitempty"`
	Published   time.Time `json:"published"`
	Updated     time.Time `json:"updated"`
	Content     string    `json:"content,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Author      string    `json:"author,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	SourceTitle string    `json:"source_title,omitempty"`
}

// Body возвращает содержимое записи, а при его отсутствии краткое описание.
func (e Entry) Body() string {
	if e.Content != "" {
		return e.Content
	}
	return e.Summary
}

// Feed представляет одну ленту, разобранную из ответа сервиса.
// Порядок Entries совпадает с порядком элементов entry в документе.
type Feed struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Updated time.Time `json:"updated"`
	Entries []Entry   `json:"entries"`
}

// Len возвращает количество записей в ленте.
func (f *Feed) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Entries)
}

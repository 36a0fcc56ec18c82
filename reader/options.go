package reader

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
)

// DefaultCount - количество записей, запрашиваемое, если ListOptions.Count не задан.
const DefaultCount = 20

// ListOptions задает параметры выборки ленты.
type ListOptions struct {
	// Count - сколько записей запросить (параметр n). 0 означает DefaultCount.
	Count int
	// Since - вернуть записи начиная с этого момента (параметры r=o и ot).
	// Нулевое значение означает, что ограничение не задано. Точность - секунды.
	Since time.Time
}

// streamQuery описывает query-строку запроса ленты.
type streamQuery struct {
	Count int    `url:"n"`
	Order string `url:"r,omitempty"`
	Since *int64 `url:"ot,omitempty"`
}

func (o ListOptions) values() (url.Values, error) {
	if o.Count < 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidOptions, o.Count)
	}
	q := streamQuery{Count: o.Count}
	if q.Count == 0 {
		q.Count = DefaultCount
	}
	if !o.Since.IsZero() {
		ot := o.Since.Unix()
		q.Order = "o"
		q.Since = &ot
	}
	return query.Values(q)
}

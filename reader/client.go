// Package reader реализует клиент API чтения Google Reader:
// вход через ClientLogin и получение лент категорий в формате Atom.
//
// Клиент не потокобезопасен для одновременных вызовов: каждый вызов - один
// синхронный запрос, повторов и кеширования нет.
package reader

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"greader/feed"
	"greader/internal/adapter/fetcher"
)

// DefaultBaseURL - адрес сервиса, к которому добавляется /reader/atom/<путь>.
const DefaultBaseURL = "http://www.google.com"

const atomPrefix = "/reader/atom/"

// Option настраивает Client и Authenticate.
type Option func(*settings)

type settings struct {
	baseURL    string
	loginURL   string
	httpClient *http.Client
	log        *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		baseURL:  DefaultBaseURL,
		loginURL: DefaultLoginURL,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) fetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(s.httpClient, s.log)
}

// WithBaseURL задает адрес сервиса лент (по умолчанию DefaultBaseURL).
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLoginURL задает адрес ClientLogin (по умолчанию DefaultLoginURL).
func WithLoginURL(loginURL string) Option {
	return func(s *settings) {
		s.loginURL = loginURL
	}
}

// WithHTTPClient задает HTTP-клиент; таймауты и отмена - его забота.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.httpClient = c
	}
}

// WithLogger задает логгер для отладочных записей. По умолчанию записи отбрасываются.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

// Client выполняет авторизованные запросы к API чтения.
// После создания не изменяется.
type Client struct {
	token   AuthToken
	baseURL string
	fetcher *fetcher.HTTPFetcher
	log     *slog.Logger
}

// NewClient создает клиент из ранее полученного токена.
func NewClient(token AuthToken, opts ...Option) *Client {
	return newClient(token, newSettings(opts))
}

// NewClientFromHeader создает клиент из готового значения заголовка Authorization.
func NewClientFromHeader(header string, opts ...Option) (*Client, error) {
	token, err := ParseAuthHeader(header)
	if err != nil {
		return nil, err
	}
	return NewClient(token, opts...), nil
}

func newClient(token AuthToken, s settings) *Client {
	return &Client{
		token:   token,
		baseURL: s.baseURL,
		fetcher: s.fetcher(),
		log:     s.log.With(slog.String("component", "reader")),
	}
}

// AuthHeader возвращает значение заголовка Authorization, отправляемого с каждым запросом.
func (c *Client) AuthHeader() string {
	return c.token.Header()
}

// Token возвращает токен клиента.
func (c *Client) Token() AuthToken {
	return c.token
}

// ReadFeed получает произвольный поток по пути относительно /reader/atom/,
// например "user/-/state/com.google/starred", "user/-/label/go" или
// "feed/http://example.com/rss?id=1". Адрес ленты после "feed/" передается
// неэкранированным и экранируется целиком.
func (c *Client) ReadFeed(ctx context.Context, path string, opts ListOptions) (*feed.Feed, error) {
	const op = "reader.ReadFeed"
	values, err := opts.values()
	if err != nil {
		return nil, err
	}
	target := c.baseURL + atomPrefix + escapeStreamPath(strings.TrimLeft(path, "/")) + "?" + values.Encode()
	log := c.log.With(slog.String("op", op), slog.String("stream", path))

	header := http.Header{}
	header.Set("Authorization", c.token.Header())
	body, err := c.fetcher.Get(ctx, target, header)
	if err != nil {
		log.Debug("Stream request failed", slog.Any("error", err))
		return nil, toRequestError(target, err)
	}
	f, err := feed.Parse(bytes.NewReader(body))
	if err != nil {
		log.Debug("Stream parse failed", slog.Any("error", err))
		return nil, err
	}
	log.Debug("Stream fetched", slog.Int("count", f.Len()))
	return f, nil
}

// escapeStreamPath экранирует адрес ленты в пути "feed/<url>", чтобы его
// query-строка не смешивалась с параметрами потока.
func escapeStreamPath(path string) string {
	if feedURL, ok := strings.CutPrefix(path, "feed/"); ok {
		return "feed/" + url.PathEscape(feedURL)
	}
	return path
}

func toRequestError(target string, err error) error {
	var statusErr *fetcher.StatusError
	if errors.As(err, &statusErr) {
		return &RequestError{
			URL:    statusErr.URL,
			Status: statusErr.StatusCode,
			Body:   statusErr.Body,
			Err:    err,
		}
	}
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	return &RequestError{URL: target, Err: err}
}

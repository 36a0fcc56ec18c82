package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// maxBodySize ограничивает размер читаемого тела ответа.
const maxBodySize = 10 << 20

// StatusError возвращается, когда сервер ответил статусом вне диапазона 2xx.
// Содержит код ответа и тело, чтобы вызывающий мог диагностировать проблему.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d for url %s", e.StatusCode, e.URL)
}

// HTTPFetcher выполняет запросы к API Google Reader.
// Содержит HTTP-клиент и логгер; каждый вызов - ровно один запрос без повторов.
type HTTPFetcher struct {
	client *http.Client
	log    *slog.Logger
}

// NewHTTPFetcher создает HTTPFetcher. Если client равен nil, используется http.DefaultClient.
func NewHTTPFetcher(client *http.Client, log *slog.Logger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &HTTPFetcher{
		client: client,
		log:    log,
	}
}

// Get выполняет GET-запрос с переданными заголовками и возвращает тело ответа.
// Для статусов вне 2xx возвращает *StatusError.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", rawURL, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return f.do(req)
}

// PostForm отправляет форму методом POST в кодировке application/x-www-form-urlencoded.
func (f *HTTPFetcher) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func (f *HTTPFetcher) do(req *http.Request) ([]byte, error) {
	target := redactQuery(req.URL)
	log := f.log.With(
		slog.String("component", "fetcher"),
		slog.String("method", req.Method),
		slog.String("url", target),
	)
	log.Debug("Sending request")
	resp, err := f.client.Do(req)
	if err != nil {
		log.Debug("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch url %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		log.Debug("Failed to read response body", slog.Any("error", err))
		return nil, fmt.Errorf("failed to read body of %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		if len(body) > maxBodySize {
			body = body[:maxBodySize]
		}
		return nil, &StatusError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body of %s exceeds %d bytes", target, maxBodySize)
	}
	log.Debug("Request completed", slog.Int("status_code", resp.StatusCode), slog.Int("bytes", len(body)))
	return body, nil
}

// redactQuery возвращает URL без query-строки: в логи и ошибки не попадают параметры запроса.
func redactQuery(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.RawQuery = ""
	clean.User = nil
	return clean.String()
}

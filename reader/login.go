package reader

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"greader/internal/adapter/fetcher"
)

// DefaultLoginURL - адрес ClientLogin.
const DefaultLoginURL = "https://www.google.com/accounts/ClientLogin"

const loginService = "reader"

// Authenticate выполняет вход через ClientLogin и возвращает клиент с полученным токеном.
// Форма содержит ровно три поля: Email, Passwd и service=reader. Повторов нет.
func Authenticate(ctx context.Context, username, password string, opts ...Option) (*Client, error) {
	if username == "" || password == "" {
		return nil, &AuthenticationError{Reason: "username and password are required"}
	}
	s := newSettings(opts)
	form := url.Values{
		"Email":   {username},
		"Passwd":  {password},
		"service": {loginService},
	}
	log := s.log.With("component", "reader", "op", "reader.Authenticate")
	body, err := s.fetcher().PostForm(ctx, s.loginURL, form)
	if err != nil {
		var statusErr *fetcher.StatusError
		if errors.As(err, &statusErr) {
			reason := parseLoginResponse(statusErr.Body)["Error"]
			log.Debug("Login rejected", "status_code", statusErr.StatusCode, "reason", reason)
			return nil, &AuthenticationError{Status: statusErr.StatusCode, Reason: reason, Err: err}
		}
		log.Debug("Login request failed", "error", err)
		return nil, &AuthenticationError{Err: err}
	}
	token := NewAuthToken(parseLoginResponse(string(body))["Auth"])
	if token.IsZero() {
		return nil, &AuthenticationError{Reason: "response has no Auth token"}
	}
	log.Debug("Login succeeded")
	return newClient(token, s), nil
}

// parseLoginResponse разбирает тело ответа ClientLogin: строки вида key=value.
// Строки без "=" пропускаются; значение может само содержать "=".
func parseLoginResponse(body string) map[string]string {
	pairs := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := strings.Cut(strings.TrimRight(line, "\r"), "=")
		if !ok {
			continue
		}
		pairs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return pairs
}

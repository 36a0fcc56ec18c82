package reader

import (
	"errors"
	"fmt"

	"greader/feed"
)

// ErrInvalidOptions возвращается для некорректных ListOptions.
var ErrInvalidOptions = errors.New("invalid list options")

// ParseError - псевдоним feed.ParseError, чтобы вызывающему хватало одного импорта.
type ParseError = feed.ParseError

// AuthenticationError сообщает о неудачном входе через ClientLogin:
// транспортная ошибка, статус вне 2xx или ответ без ключа Auth.
type AuthenticationError struct {
	// Status - HTTP-статус ответа; 0, если ответа не было.
	Status int
	// Reason - значение ключа Error из ответа сервиса (например, BadAuthentication) или описание.
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	msg := "authentication failed"
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.Status)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RequestError сообщает о неудачном авторизованном запросе на чтение.
type RequestError struct {
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request %s failed: status %d: %s", e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

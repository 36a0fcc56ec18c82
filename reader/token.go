package reader

import (
	"fmt"
	"strings"
)

const authScheme = "GoogleLogin auth="

// AuthToken - непрозрачный токен ClientLogin.
// String() не раскрывает значение, поэтому токен безопасно передавать в логи.
type AuthToken struct {
	value string
}

// NewAuthToken оборачивает значение токена, полученное от сервиса.
func NewAuthToken(value string) AuthToken {
	return AuthToken{value: strings.TrimSpace(value)}
}

// ParseAuthHeader извлекает токен из значения заголовка вида "GoogleLogin auth=<token>".
func ParseAuthHeader(header string) (AuthToken, error) {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, authScheme) {
		return AuthToken{}, fmt.Errorf("authorization header must start with %q", authScheme)
	}
	token := NewAuthToken(strings.TrimPrefix(header, authScheme))
	if token.IsZero() {
		return AuthToken{}, fmt.Errorf("authorization header carries an empty token")
	}
	return token, nil
}

// IsZero сообщает, что токен пуст.
func (t AuthToken) IsZero() bool { return t.value == "" }

// Value возвращает исходное значение токена.
func (t AuthToken) Value() string { return t.value }

// Header возвращает значение заголовка Authorization.
func (t AuthToken) Header() string { return authScheme + t.value }

func (t AuthToken) String() string {
	if t.value == "" {
		return "AuthToken(empty)"
	}
	return "AuthToken(redacted)"
}

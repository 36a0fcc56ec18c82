package reader

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOptions_Values(t *testing.T) {
	v, err := ListOptions{}.values()
	require.NoError(t, err)
	assert.Equal(t, "n=20", v.Encode())

	v, err = ListOptions{Count: 59}.values()
	require.NoError(t, err)
	assert.Equal(t, "n=59", v.Encode())

	since := time.Unix(1262694615, 999_000_000)
	v, err = ListOptions{Count: 240, Since: since}.values()
	require.NoError(t, err)
	assert.Equal(t, "n=240&ot=1262694615&r=o", v.Encode())

	_, err = ListOptions{Count: -3}.values()
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestAuthToken(t *testing.T) {
	token := NewAuthToken(" secret ")

	assert.Equal(t, "secret", token.Value())
	assert.Equal(t, "GoogleLogin auth=secret", token.Header())
	assert.NotContains(t, token.String(), "secret")
	assert.NotContains(t, fmt.Sprintf("%v", token), "secret")
	assert.True(t, NewAuthToken("").IsZero())
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "user/-/state/com.google/tracking-emailed", CategoryTrackingEmailed.Path())
	assert.Equal(t, "user/-/label/go%20lang", LabelPath("go lang"))

	c, err := ParseCategory("starred")
	require.NoError(t, err)
	assert.Equal(t, CategoryStarred, c)

	_, err = ParseCategory("kept-unread")
	assert.Error(t, err)
}

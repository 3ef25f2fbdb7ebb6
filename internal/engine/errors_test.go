package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsKindSentinel(t *testing.T) {
	err := fmt.Errorf("channel feed: %w", &Error{Kind: KindNetwork, StatusCode: 503, Msg: "GET /feeds"})

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, 503, StatusOf(err))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(KindParsing, cause, "decode %s", "ytInitialData")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrParsing))
	assert.Equal(t, "decode ytInitialData: boom", err.Error())
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindRateLimited, StatusCode: 429}
	assert.Equal(t, "RATE_LIMITED (HTTP 429 Too Many Requests)", err.Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("x")))
	assert.Zero(t, StatusOf(errors.New("x")))
}

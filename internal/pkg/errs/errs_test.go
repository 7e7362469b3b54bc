//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"affiliate-notify/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errs.New("sentinel")

func TestMark(t *testing.T) {
	cause := errors.New("driver failure")

	marked := errs.Mark(cause, errSentinel)

	assert.True(t, errs.Is(marked, errSentinel))
	assert.True(t, errs.Is(marked, cause))
	assert.False(t, errors.Is(marked, errSentinel), "marks are only visible through errs.Is")
	assert.Equal(t, errSentinel, errs.Mark(nil, errSentinel))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, errs.Wrap(nil, "ignored"))
	assert.Nil(t, errs.Wrapf(nil, "ignored %d", 1))

	wrapped := errs.Wrapf(errSentinel, "loading request %d", 7)
	assert.ErrorIs(t, wrapped, errSentinel)
	assert.Contains(t, wrapped.Error(), "loading request 7")
}

func TestExtractStackLines(t *testing.T) {
	assert.Nil(t, errs.ExtractStackLines(nil, 5))

	lines := errs.ExtractStackLines(errs.Wrap(errSentinel, "outer"), 3)
	assert.LessOrEqual(t, len(lines), 3)
	assert.NotEmpty(t, lines)
}

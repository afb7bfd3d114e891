package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrKindNotFound, KindOf(NotFoundError("missing")))
	assert.Equal(t, ErrKindConflict, KindOf(ConflictError("already cancelled")))
	assert.Equal(t, ErrKindInternal, KindOf(errors.New("raw")))
}

func TestAsInternal_DoesNotRewrapClassified(t *testing.T) {
	classified := ValidationError("bad amount")
	wrapped := AsInternal("payment", classified)
	assert.Equal(t, ErrKindValidation, KindOf(wrapped))
	assert.Same(t, classified, wrapped)

	raw := errors.New("connection reset")
	wrapped = AsInternal("payment", raw)
	assert.Equal(t, ErrKindInternal, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, raw)
}

package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSubject(t *testing.T) {
	for _, s := range Subjects {
		assert.True(t, IsSubject(s), s)
	}
	for _, s := range []string{"", "physics", " Physics", "Geography"} {
		assert.False(t, IsSubject(s), s)
	}
}

func TestStudentNotFound(t *testing.T) {
	assert.True(t, errors.Is(ErrStudentNotFound, ErrNotFound))
	assert.Equal(t, "Student not found", ErrStudentNotFound.Error())
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResumeObjectName(t *testing.T) {
	assert.Equal(t, "cv/u1/abc.pdf", ResumeObjectName("u1", "abc"))
	assert.Equal(t, "cv/_/abc.pdf", ResumeObjectName(" ", "abc"))
	assert.Equal(t, "cv/__etc_passwd/x.pdf", ResumeObjectName("../etc/passwd", "x"))
}

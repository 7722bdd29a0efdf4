package qr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tableside/internal/qr"
)

func TestTableQRGenerator(t *testing.T) {
	gen := qr.TableQRGenerator{BaseURL: "http://localhost"}
	png, err := gen.Generate(4, "tok a/b")

	assert.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestTableQRGenerator_CustomSize(t *testing.T) {
	gen := qr.TableQRGenerator{BaseURL: "http://localhost", Size: 128}
	png, err := gen.Generate(1, "tok-1")

	assert.NoError(t, err)
	assert.NotEmpty(t, png)
}

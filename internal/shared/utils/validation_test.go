package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("notes", "app_id", true))
	assert.NoError(t, ValidateID("file-browser_2", "app_id", true))
	assert.Error(t, ValidateID("", "app_id", true))
	assert.NoError(t, ValidateID("", "app_id", false))
	assert.Error(t, ValidateID("../etc", "app_id", true))
	assert.Error(t, ValidateID(strings.Repeat("a", MaxIDLength+1), "app_id", true))
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle(""))
	assert.NoError(t, ValidateTitle("a.md - Notes"))
	assert.Error(t, ValidateTitle("bad\x00title"))
	assert.Error(t, ValidateTitle(strings.Repeat("t", MaxTitleLength+1)))
}

func TestValidateContent(t *testing.T) {
	assert.NoError(t, ValidateContent(""))
	assert.Error(t, ValidateContent(strings.Repeat("x", MaxFileSize+1)))
}

func TestValidateOpacity(t *testing.T) {
	ok, low, high := 0.7, -0.1, 1.5
	assert.NoError(t, ValidateOpacity(nil))
	assert.NoError(t, ValidateOpacity(&ok))
	assert.Error(t, ValidateOpacity(&low))
	assert.Error(t, ValidateOpacity(&high))
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"17", "18"}, splitAndTrim("17, 18"))
	assert.Equal(t, []string{"01"}, splitAndTrim(" 01 "))
	assert.Empty(t, splitAndTrim(","))
	assert.Empty(t, splitAndTrim(""))
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandCarriesBuildVersion(t *testing.T) {
	assert.NotEmpty(t, rootCmd.Version)
	assert.Contains(t, rootCmd.Version, Version)
	assert.Contains(t, rootCmd.Version, GitCommit)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-file", "produits.xlsx", "-mode", "permissive", "-dry-run", "-sheet", "Feuil1"})
	require.NoError(t, err)
	assert.Equal(t, "produits.xlsx", opts.File)
	assert.Equal(t, "permissive", opts.Mode)
	assert.True(t, opts.DryRun)
	assert.Equal(t, "Feuil1", opts.Sheet)

	_, err = parseFlags([]string{"-mode", "strict"})
	assert.Error(t, err)
}

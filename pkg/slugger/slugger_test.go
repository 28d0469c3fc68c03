package slugger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	assert.Equal(t, "cpu-900-test-cpu", Make("CPU-900", "Test CPU"))
	assert.Equal(t, "cartes-meres", Make("Cartes mères"))
	assert.Equal(t, "ssd", Make("", " SSD "))
}

func TestUniqueAppendsIncrementingSuffix(t *testing.T) {
	taken := map[string]bool{"cpu-900-test-cpu": true, "cpu-900-test-cpu-1": true}
	got, err := Unique("cpu-900-test-cpu", func(c string) (bool, error) { return taken[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "cpu-900-test-cpu-2", got)
}

func TestUniqueErrors(t *testing.T) {
	_, err := Unique("", func(string) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, ErrEmptySlug)

	boom := errors.New("db down")
	_, err = Unique("x", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCharacteristics(t *testing.T) {
	text := "Socket: AM5\r\n- Cores: 8\n• Fréquence : 4.2 GHz\n\nno colon here\n: missing key\nCache:\n* TDP: 105 W: boost"

	got := ParseCharacteristics(text)

	assert.Equal(t, []Spec{
		{Key: "Socket", Value: "AM5"},
		{Key: "Cores", Value: "8"},
		{Key: "Fréquence", Value: "4.2 GHz"},
		{Key: "TDP", Value: "105 W: boost"},
	}, got)
}

func TestParseCharacteristicsEmpty(t *testing.T) {
	assert.Empty(t, ParseCharacteristics(""))
	assert.Empty(t, ParseCharacteristics("just text\nmore text"))
}

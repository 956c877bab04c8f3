package gui

import (
	"image/color"
	"testing"

	"github.com/fmuoria/veriskill/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xff}, toneColor(views.ToneGreen))
	assert.Equal(t, color.NRGBA{R: 0xfa, G: 0xcc, B: 0x15, A: 0xff}, toneColor(views.ToneYellow))
	assert.Equal(t, color.NRGBA{R: 0xf8, G: 0x71, B: 0x71, A: 0xff}, toneColor(views.ToneRed))
	assert.Equal(t, color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}, toneColor(views.ToneGray))
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#0a0B0c")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x0a, G: 0x0b, B: 0x0c, A: 0xff}, c)

	for _, bad := range []string{"", "0a0b0c", "#0a0b", "#zzzzzz"} {
		_, err := parseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestStatusResource(t *testing.T) {
	assert.Nil(t, statusResource(views.StatusIcon("Unknown")))
	assert.Nil(t, statusResource(""))
}

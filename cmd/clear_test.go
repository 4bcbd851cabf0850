package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClearSelectionEmpty(t *testing.T) {
	assert.True(t, clearSelection{}.empty())
	assert.False(t, clearSelection{wireguardData: true}.empty())
}

func TestEverythingSelectionSparesConfig(t *testing.T) {
	sel := everythingSelection(false)

	assert.False(t, sel.configFile, "flag-less clear keeps the stored config")
	assert.True(t, sel.prebuildCont)
	assert.True(t, sel.prebuilderImg)
	assert.True(t, sel.prebuiltImg)
	assert.True(t, sel.wireguardData)
	assert.True(t, sel.checkersData)
	assert.True(t, sel.gameserverVolume)
}

func TestEverythingSelectionWithConfig(t *testing.T) {
	assert.True(t, everythingSelection(true).configFile)
}

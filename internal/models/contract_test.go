package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPortalPassword(t *testing.T) {
	assert.Equal(t, "483920", ExtractPortalPassword("Paid deposit in cash\nPASSWORD:483920"))
	assert.Equal(t, "123456", ExtractPortalPassword("PASSWORD:123456"))
	assert.Equal(t, "", ExtractPortalPassword("no marker here"))
	assert.Equal(t, "", ExtractPortalPassword(""))
}

func TestExtractPortalPassword_FirstMarkerWins(t *testing.T) {
	notes := "PASSWORD:111111\nsome text\nPASSWORD:222222"
	assert.Equal(t, "111111", ExtractPortalPassword(notes))
}

func TestAppendPasswordMarker(t *testing.T) {
	assert.Equal(t, "PASSWORD:654321", AppendPasswordMarker("", "654321"))
	assert.Equal(t, "keys handed over\nPASSWORD:654321", AppendPasswordMarker("keys handed over", "654321"))
}

func TestStripPasswordMarkers(t *testing.T) {
	assert.Equal(t, "keys handed over", StripPasswordMarkers("keys handed over\nPASSWORD:654321"))
	assert.Equal(t, "", StripPasswordMarkers("PASSWORD:654321"))
	assert.Equal(t, "a\n\nb", StripPasswordMarkers("a\nPASSWORD:1\nb"))
	assert.Equal(t, "plain notes", StripPasswordMarkers("plain notes"))
}

func TestMarkerRoundTrip(t *testing.T) {
	notes := AppendPasswordMarker("deposit received", "778899")
	assert.Equal(t, "778899", ExtractPortalPassword(notes))
	assert.Equal(t, "deposit received", StripPasswordMarkers(notes))
}

func TestCarryPasswordMarker(t *testing.T) {
	old := "old text\nPASSWORD:314159"

	// New notes keep the existing secret's marker.
	assert.Equal(t, "new text\nPASSWORD:314159", CarryPasswordMarker("new text", old))

	// Empty new notes collapse to just the marker.
	assert.Equal(t, "PASSWORD:314159", CarryPasswordMarker("", old))

	// Nothing to carry when the old notes had no marker.
	assert.Equal(t, "new text", CarryPasswordMarker("new text", "old text"))
}

func TestReleasesRoom(t *testing.T) {
	assert.True(t, ReleasesRoom(ContractTerminated))
	assert.True(t, ReleasesRoom(ContractExpired))
	assert.True(t, ReleasesRoom(ContractUnoccupied))
	assert.False(t, ReleasesRoom(ContractActive))
	assert.False(t, ReleasesRoom(""))
}

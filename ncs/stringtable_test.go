package ncs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDifferentialNameLastSegmentReplace(t *testing.T) {
	got := decodeDifferentialName("ID_Achievement_10_worldevents_colosseum", "1airship")
	assert.Equal(t, "ID_Achievement_11_worldevents_airship", got)
}

func TestDecodeDifferentialNameWholeTailReplace(t *testing.T) {
	got := decodeDifferentialName("ID_Achievement_10_worldevents_colosseum", "24_missions_side")
	assert.Equal(t, "ID_Achievement_24_missions_side", got)
}

func TestParseStringTableDifferentialEntries(t *testing.T) {
	var buf bytes.Buffer
	appendVarInt(&buf, 3)
	appendVarInt(&buf, uint64(len("ID_Achievement_10_worldevents_colosseum")))
	buf.WriteString("ID_Achievement_10_worldevents_colosseum")
	appendVarInt(&buf, uint64(len("1airship")))
	buf.WriteString("1airship")
	appendVarInt(&buf, uint64(len("24_missions_side")))
	buf.WriteString("24_missions_side")

	table, err := parseStringTable(NewCursor(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, table.Entries, 3)
	assert.Equal(t, "ID_Achievement_10_worldevents_colosseum", table.Entries[0])
	assert.Equal(t, "ID_Achievement_11_worldevents_airship", table.Entries[1])
	assert.Equal(t, "ID_Achievement_24_missions_side", table.Entries[2])
	assert.Equal(t, 0, table.Repaired)
}

func TestParseStringTableLiteralEntriesUntouched(t *testing.T) {
	var buf bytes.Buffer
	buildStringTable(&buf, []string{"first.bin", "second.bin"})

	table, err := parseStringTable(NewCursor(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, table.Entries, 2)
	assert.Equal(t, "first.bin", table.Entries[0])
	assert.Equal(t, "second.bin", table.Entries[1])
}

func TestParseStringTableSplitsConcatenatedEntry(t *testing.T) {
	var buf bytes.Buffer
	appendVarInt(&buf, 2) // declared count, one entry short on the wire
	merged := "01Weapon_AR_Jakobs"
	appendVarInt(&buf, uint64(len(merged)))
	buf.WriteString(merged)

	table, err := parseStringTable(NewCursor(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, table.Entries, 2)
	assert.Equal(t, "01", table.Entries[0])
	assert.Equal(t, "Weapon_AR_Jakobs", table.Entries[1])
	assert.Equal(t, 1, table.Repaired)
}

func TestParseStringTableUnsplittableShortfallGivesUp(t *testing.T) {
	var buf bytes.Buffer
	appendVarInt(&buf, 5)
	appendVarInt(&buf, uint64(len("plain")))
	buf.WriteString("plain")

	table, err := parseStringTable(NewCursor(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, table.Entries, 1)
	assert.Equal(t, 0, table.Repaired)
}

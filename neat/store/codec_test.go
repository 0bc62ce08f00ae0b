package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/neatevo/neat"
)

func TestSnapshotCodec(t *testing.T) {
	snap := testSnapshot(t, 4)
	data, err := EncodeSnapshot("run-1", snap)
	require.NoError(t, err)

	runID, got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
	assertSameSnapshot(t, snap, got)
}

func TestStatsCodec(t *testing.T) {
	stats := neat.GenerationStats{Generation: 3, BestFitness: 1.5, Stagnant: true, Duration: 1500}
	data, err := EncodeStats("run", stats)
	require.NoError(t, err)

	got, err := DecodeStats(data)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestCodecVersionMismatch(t *testing.T) {
	_, _, err := DecodeSnapshot([]byte(`{"schema_version":2,"codec_version":1,"snapshot":{}}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)

	_, err = DecodeStats([]byte(`{"schema_version":1,"codec_version":0}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestDecodeSnapshotErrors(t *testing.T) {
	_, _, err := DecodeSnapshot([]byte(`{"schema_version":1,"codec_version":1}`))
	assert.Error(t, err)

	_, _, err = DecodeSnapshot([]byte(`not json`))
	assert.Error(t, err)
}

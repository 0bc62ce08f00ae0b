package store

import (
	"encoding/json"
	"errors"

	"github.com/baldhumanity/neatevo/neat"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// VersionedRecord tags every stored payload with the versions it was written with.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type snapshotRecord struct {
	VersionedRecord
	RunID    string         `json:"run_id"`
	Snapshot *neat.Snapshot `json:"snapshot"`
}

type statsRecord struct {
	VersionedRecord
	RunID string               `json:"run_id"`
	Stats neat.GenerationStats `json:"stats"`
}

func currentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeSnapshot(runID string, snap *neat.Snapshot) ([]byte, error) {
	return json.Marshal(snapshotRecord{VersionedRecord: currentVersion(), RunID: runID, Snapshot: snap})
}

func DecodeSnapshot(data []byte) (string, *neat.Snapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", nil, err
	}
	if err := checkVersion(rec.VersionedRecord); err != nil {
		return "", nil, err
	}
	if rec.Snapshot == nil {
		return "", nil, errors.New("record holds no snapshot")
	}
	return rec.RunID, rec.Snapshot, nil
}

func EncodeStats(runID string, stats neat.GenerationStats) ([]byte, error) {
	return json.Marshal(statsRecord{VersionedRecord: currentVersion(), RunID: runID, Stats: stats})
}

func DecodeStats(data []byte) (neat.GenerationStats, error) {
	var rec statsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return neat.GenerationStats{}, err
	}
	if err := checkVersion(rec.VersionedRecord); err != nil {
		return neat.GenerationStats{}, err
	}
	return rec.Stats, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

package neat

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
)

// SaveCheckpoint writes a gzip compressed JSON snapshot of the population to filePath.
func (p *Population) SaveCheckpoint(filePath string) error {
	snap, err := p.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot population: %w", err)
	}
	if err := WriteCheckpoint(filePath, snap); err != nil {
		return err
	}
	p.logger.Info("checkpoint saved", "path", filePath, "generation", snap.Generation, "snapshot", snap.ID)
	return nil
}

// WriteCheckpoint writes snap to filePath as gzip compressed JSON.
func WriteCheckpoint(filePath string, snap *Snapshot) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close checkpoint file '%s': %w", filePath, cerr)
		}
	}()

	gzWriter := gzip.NewWriter(file)
	if err := json.NewEncoder(gzWriter).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}
	return nil
}

// ReadCheckpoint reads a snapshot written by WriteCheckpoint.
func ReadCheckpoint(filePath string) (*Snapshot, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	snap := &Snapshot{}
	if err := json.NewDecoder(gzReader).Decode(snap); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}
	return snap, nil
}

// LoadCheckpoint reads the checkpoint at filePath and restores it through b, which must
// carry the generator, selector and tracker.
func LoadCheckpoint(filePath string, b *PopulationBuilder) (*Population, error) {
	snap, err := ReadCheckpoint(filePath)
	if err != nil {
		return nil, err
	}
	p, err := b.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to restore checkpoint '%s': %w", filePath, err)
	}
	p.logger.Info("checkpoint loaded", "path", filePath, "generation", p.generation, "snapshot", snap.ID)
	return p, nil
}

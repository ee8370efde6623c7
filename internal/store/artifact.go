// internal/store/artifact.go
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/zstd"

	"autoscribe/internal/action"
	"autoscribe/internal/errdefs"
)

const archiveExt = ".zst"

// WriteScript serializes a finished recording into the recordings
// directory (atomic write, fsync before rename) and registers it in the
// catalog. Returns the artifact path. Implements recorder.ScriptWriter.
func (s *Store) WriteScript(sc *action.Script) (string, error) {
	data, err := action.Encode(sc)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.recordingsDir, artifactFilename(sc))
	if err := renameio.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	info := &ScriptInfo{
		ID:          sc.ID,
		Name:        sc.Name,
		Path:        path,
		ActionCount: len(sc.Actions),
		CreatedAt:   sc.CreatedAt,
	}
	if err := s.upsert(info); err != nil {
		return "", fmt.Errorf("register script: %w", err)
	}
	return path, nil
}

// LoadScript reads and validates a script artifact from disk, compressed
// or plain. A missing path is a FileNotFound error.
func (s *Store) LoadScript(path string) (*action.Script, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errdefs.Wrap(errdefs.CodeFileNotFound, err, "script artifact %q", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	if strings.HasSuffix(path, archiveExt) {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer decoder.Close()
		data, err = decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress artifact: %w", err)
		}
	}
	return action.Decode(data)
}

// LoadByID loads the artifact behind a catalog entry.
func (s *Store) LoadByID(id string) (*action.Script, error) {
	info, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.LoadScript(info.Path)
}

// Archive compresses a script's artifact in place, replacing the plain
// JSON with a zstd-compressed copy.
func (s *Store) Archive(id string) error {
	info, err := s.Get(id)
	if err != nil {
		return err
	}
	if info.Archived {
		return nil
	}

	data, err := os.ReadFile(info.Path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	compressed := encoder.EncodeAll(data, nil)
	encoder.Close()

	archivePath := info.Path + archiveExt
	if err := renameio.WriteFile(archivePath, compressed, 0600); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	if err := os.Remove(info.Path); err != nil {
		s.logger.Warn().Err(err).Str("path", info.Path).Msg("failed to remove plain artifact after archiving")
	}

	info.Path = archivePath
	info.Archived = true
	return s.upsert(info)
}

// Restore decompresses an archived script back to plain JSON.
func (s *Store) Restore(id string) error {
	info, err := s.Get(id)
	if err != nil {
		return err
	}
	if !info.Archived {
		return nil
	}

	sc, err := s.LoadScript(info.Path)
	if err != nil {
		return err
	}
	data, err := action.Encode(sc)
	if err != nil {
		return err
	}

	plainPath := strings.TrimSuffix(info.Path, archiveExt)
	if err := renameio.WriteFile(plainPath, data, 0600); err != nil {
		return fmt.Errorf("write restored artifact: %w", err)
	}
	if err := os.Remove(info.Path); err != nil {
		s.logger.Warn().Err(err).Str("path", info.Path).Msg("failed to remove archive after restore")
	}

	info.Path = plainPath
	info.Archived = false
	return s.upsert(info)
}

// SyncDir reconciles the catalog with the recordings directory: artifacts
// that appeared out of band are registered, rows whose files vanished are
// dropped. Invalid files are skipped with a log entry.
func (s *Store) SyncDir() error {
	known := map[string]*ScriptInfo{}
	infos, err := s.List()
	if err != nil {
		return err
	}
	for _, info := range infos {
		known[info.Path] = info
	}

	entries, err := os.ReadDir(s.recordingsDir)
	if err != nil {
		return fmt.Errorf("read recordings dir: %w", err)
	}

	onDisk := map[string]bool{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".json"+archiveExt) {
			continue
		}
		path := filepath.Join(s.recordingsDir, name)
		onDisk[path] = true

		if _, ok := known[path]; ok {
			continue
		}
		sc, err := s.LoadScript(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable artifact")
			continue
		}
		if err := s.upsert(&ScriptInfo{
			ID:          sc.ID,
			Name:        sc.Name,
			Path:        path,
			ActionCount: len(sc.Actions),
			Archived:    strings.HasSuffix(path, archiveExt),
			CreatedAt:   sc.CreatedAt,
		}); err != nil {
			return err
		}
		s.logger.Info().Str("path", path).Msg("registered out-of-band artifact")
	}

	for path, info := range known {
		if !onDisk[path] {
			if _, err := s.db.Exec(`DELETE FROM scripts WHERE id = ?`, info.ID); err != nil {
				return err
			}
			s.logger.Info().Str("id", info.ID).Str("path", path).Msg("dropped catalog row for missing artifact")
		}
	}
	return nil
}

func artifactFilename(sc *action.Script) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, sc.Name)
	if name == "" {
		name = "recording"
	}
	suffix := sc.ID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("%s-%s.json", name, suffix)
}

func removeArtifact(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/pkg/logger"
)

// Store persists the ledger document as a single JSON file. Writes go through
// a temp file plus rename so a crash mid-write can never leave a truncated
// document behind. The store serializes its own writers, so a snapshot taken
// later can never be overwritten by one taken earlier; snapshotting the
// ledger stays outside this lock.
type Store struct {
	mu         sync.Mutex
	path       string
	backupPath string
	log        *logger.Logger
}

func NewStore(path, backupPath string) *Store {
	return &Store{
		path:       path,
		backupPath: backupPath,
		log:        logger.GetLogger(),
	}
}

// Save writes the document atomically.
func (s *Store) Save(doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return atomicWriteJSON(s.path, doc)
}

// Load reads the document from disk. A missing file is not an error; it
// returns an empty document. A flat single-workspace file from older releases
// is migrated into the keyed layout under the default workspace id.
func (s *Store) Load(defaultWorkspaceID string) (*model.Document, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &model.Document{Workspaces: make(map[string]*model.Workspace)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	doc := &model.Document{}
	if err := json.Unmarshal(raw, doc); err == nil && doc.Workspaces != nil {
		return doc, nil
	}

	// Older releases stored a single unkeyed workspace at the top level.
	legacy := &model.Workspace{}
	if err := json.Unmarshal(raw, legacy); err != nil || legacy.Bots == nil {
		return nil, fmt.Errorf("parse %s: unrecognized document shape", s.path)
	}
	s.log.Warnf("Migrating legacy single-workspace file to workspace %q", defaultWorkspaceID)
	return &model.Document{
		Workspaces: map[string]*model.Workspace{defaultWorkspaceID: legacy},
	}, nil
}

// Backup copies the current document to the backup path.
func (s *Store) Backup(doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := atomicWriteJSON(s.backupPath, doc); err != nil {
		return err
	}
	s.log.Infof("Backup written to %s", s.backupPath)
	return nil
}

func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/config"
	errs "github.com/jacobdurrah/auction-bdding/pkg/errors"
	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
)

const (
	listingsFile = "listings.json"
	historyFile  = "bid_history.json"
	rawDir       = "raw"
	rawPrefix    = "snapshot_"
)

// ListingsDocument is the on-disk shape of the latest full scrape.
type ListingsDocument struct {
	UpdatedAt time.Time               `json:"updated_at"`
	Count     int                     `json:"count"`
	Listings  []*models.ListingRecord `json:"listings"`
}

// HistoryDocument is the on-disk shape of all tracked bid histories.
type HistoryDocument struct {
	UpdatedAt time.Time                         `json:"updated_at"`
	Summaries []models.SnapshotSummary          `json:"summaries"`
	Histories map[string]*models.ListingHistory `json:"histories"`
}

// Manager persists the tracker's JSON documents under one data
// directory. Every write is atomic: temp file in the same directory,
// fsync, then rename, so a crash mid-write can never corrupt the
// previous good document.
type Manager struct {
	dataDir string
	rawKeep int
	logger  logger.Logger
}

// NewManager creates the data directory layout and returns a Manager.
func NewManager(cfg *config.TrackerConfig) (*Manager, error) {
	if err := os.MkdirAll(filepath.Join(cfg.DataDir, rawDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Manager{
		dataDir: cfg.DataDir,
		rawKeep: cfg.RawKeep,
		logger:  logger.GetLogger(),
	}, nil
}

// SaveListings replaces the latest-scrape document.
func (m *Manager) SaveListings(records []*models.ListingRecord) error {
	doc := ListingsDocument{
		UpdatedAt: time.Now(),
		Count:     len(records),
		Listings:  records,
	}
	return m.writeAtomic(filepath.Join(m.dataDir, listingsFile), doc)
}

// LoadListings reads the latest-scrape document. A missing file is an
// empty document, not an error.
func (m *Manager) LoadListings() (*ListingsDocument, error) {
	doc := &ListingsDocument{}
	if err := m.readJSON(filepath.Join(m.dataDir, listingsFile), doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SaveHistory replaces the bid-history document.
func (m *Manager) SaveHistory(doc *HistoryDocument) error {
	doc.UpdatedAt = time.Now()
	return m.writeAtomic(filepath.Join(m.dataDir, historyFile), doc)
}

// LoadHistory reads the bid-history document. A missing file returns
// an initialized empty document.
func (m *Manager) LoadHistory() (*HistoryDocument, error) {
	doc := &HistoryDocument{}
	if err := m.readJSON(filepath.Join(m.dataDir, historyFile), doc); err != nil {
		return nil, err
	}
	if doc.Histories == nil {
		doc.Histories = make(map[string]*models.ListingHistory)
	}
	return doc, nil
}

// SaveRawSnapshot archives one pass's raw records under raw/ and
// prunes the archive down to the retention limit. Raw snapshots are
// the audit trail behind the derived history, so pruning failures are
// logged but never fail the save.
func (m *Manager) SaveRawSnapshot(records []*models.ListingRecord) (string, error) {
	name := fmt.Sprintf("%s%s.json", rawPrefix, time.Now().Format("20060102_150405"))
	path := filepath.Join(m.dataDir, rawDir, name)

	doc := ListingsDocument{
		UpdatedAt: time.Now(),
		Count:     len(records),
		Listings:  records,
	}
	if err := m.writeAtomic(path, doc); err != nil {
		return "", err
	}

	if err := m.pruneRawSnapshots(); err != nil {
		m.logger.WithError(err).Warn("Failed to prune raw snapshot archive")
	}
	return path, nil
}

// pruneRawSnapshots deletes the oldest raw snapshots beyond rawKeep.
// File names embed a sortable timestamp, so lexical order is age order.
func (m *Manager) pruneRawSnapshots() error {
	dir := filepath.Join(m.dataDir, rawDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), rawPrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= m.rawKeep {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-m.rawKeep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// writeAtomic writes v as indented JSON via temp-file-then-rename.
func (m *Manager) writeAtomic(path string, v interface{}) error {
	return WriteJSON(path, v)
}

// WriteJSON atomically writes v as an indented JSON document: temp
// file in the target directory, fsync, rename.
func WriteJSON(path string, v interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return errs.NewPersistenceError(fmt.Sprintf("create temp file: %v", err))
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.NewPersistenceError(fmt.Sprintf("encode %s: %v", filepath.Base(path), err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.NewPersistenceError(fmt.Sprintf("sync %s: %v", filepath.Base(path), err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.NewPersistenceError(fmt.Sprintf("close %s: %v", filepath.Base(path), err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.NewPersistenceError(fmt.Sprintf("rename %s: %v", filepath.Base(path), err))
	}
	return nil
}

// readJSON decodes path into v, treating a missing file as empty.
func (m *Manager) readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.NewPersistenceError(fmt.Sprintf("read %s: %v", filepath.Base(path), err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.NewPersistenceError(fmt.Sprintf("parse %s: %v", filepath.Base(path), err))
	}
	return nil
}

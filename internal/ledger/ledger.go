package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/The-Almonry/internal/consensus"
	"github.com/kingrea/The-Almonry/internal/logbook"
)

// Store persists decision records. Implementations may fail; the Recorder
// fences those failures away from the decision path.
type Store interface {
	Write(record consensus.DecisionRecord) error
}

// FileStore writes one YAML file per decision record under a root directory.
type FileStore struct {
	root string
}

// NewFileStore ensures the root directory exists and returns the store.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("ledger: ensure record dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Write encodes the record to <root>/<run-id>.yaml.
func (s *FileStore) Write(record consensus.DecisionRecord) error {
	if record.RunID == "" {
		return fmt.Errorf("ledger: record is missing a run id")
	}
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("ledger: encode record %s: %w", record.RunID, err)
	}
	path := filepath.Join(s.root, record.RunID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ledger: write record %s: %w", record.RunID, err)
	}
	return nil
}

// Read loads a single record by run id.
func (s *FileStore) Read(runID string) (consensus.DecisionRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.root, runID+".yaml"))
	if err != nil {
		return consensus.DecisionRecord{}, fmt.Errorf("ledger: read record %s: %w", runID, err)
	}
	var record consensus.DecisionRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return consensus.DecisionRecord{}, fmt.Errorf("ledger: decode record %s: %w", runID, err)
	}
	return record, nil
}

// List returns the run ids of every stored record, sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("ledger: list records: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".yaml" {
			continue
		}
		ids = append(ids, name[:len(name)-len(".yaml")])
	}
	sort.Strings(ids)
	return ids, nil
}

// Recorder is the one-way side channel between the consensus engine and a
// Store. Submit enqueues without blocking; a background worker drains the
// queue and logs write failures as warnings. A slow or broken store can
// therefore never alter or delay a consensus result.
type Recorder struct {
	store Store
	log   *logbook.Logbook

	queue  chan consensus.DecisionRecord
	done   chan struct{}
	closed sync.Once
}

const defaultQueueDepth = 16

// NewRecorder starts the background writer. Close must be called to flush.
func NewRecorder(store Store, log *logbook.Logbook) *Recorder {
	r := &Recorder{
		store: store,
		log:   log,
		queue: make(chan consensus.DecisionRecord, defaultQueueDepth),
		done:  make(chan struct{}),
	}
	go r.drain()
	return r
}

// Submit enqueues a record. When the queue is full the record is dropped with
// a warning; persistence is best-effort by contract.
func (r *Recorder) Submit(record consensus.DecisionRecord) {
	select {
	case r.queue <- record:
	default:
		r.log.Warn("ledger queue full, dropping record %s", record.RunID)
	}
}

// Close stops accepting records and waits for queued writes to finish.
func (r *Recorder) Close() {
	r.closed.Do(func() {
		close(r.queue)
		<-r.done
	})
}

func (r *Recorder) drain() {
	defer close(r.done)
	for record := range r.queue {
		if err := r.store.Write(record); err != nil {
			r.log.Warn("decision record %s not persisted: %v", record.RunID, err)
			continue
		}
		r.log.Info("decision record %s persisted", record.RunID)
	}
}

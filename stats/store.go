package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jwgv/QuickTone/logcolors"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	statsBucketName = "stats"
	statsKey        = "server_stats"
)

// Store handles persistent storage for stats
type Store struct {
	db       *bolt.DB
	dbPath   string
	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// PersistedStats represents the stats data that gets persisted to disk
type PersistedStats struct {
	TotalRequests     int64 `json:"total_requests"`
	SentimentRequests int64 `json:"sentiment_requests"`
	BatchRequests     int64 `json:"batch_requests"`
	ModelRequests     int64 `json:"model_requests"`
	HealthRequests    int64 `json:"health_requests"`
	StatsRequests     int64 `json:"stats_requests"`
	OtherRequests     int64 `json:"other_requests"`

	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	BatchCacheHits   int64 `json:"batch_cache_hits"`
	BatchCacheMisses int64 `json:"batch_cache_misses"`

	Fallbacks       int64 `json:"fallbacks"`
	BackendFailures int64 `json:"backend_failures"`

	RateLimitAccepted int64 `json:"rate_limit_accepted"`
	RateLimitRejected int64 `json:"rate_limit_rejected"`

	Status2xx int64 `json:"status_2xx"`
	Status4xx int64 `json:"status_4xx"`
	Status5xx int64 `json:"status_5xx"`

	TotalResponseTime int64 `json:"total_response_time"`
	ResponseCount     int64 `json:"response_count"`
	MinResponseTime   int64 `json:"min_response_time"`
	MaxResponseTime   int64 `json:"max_response_time"`

	LastSaved time.Time `json:"last_saved"`
}

// NewStore creates a new stats store with a dedicated BoltDB file
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %v", err)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %v", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(statsBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stats bucket: %v", err)
	}

	return &Store{
		db:       db,
		dbPath:   dbPath,
		stopChan: make(chan struct{}),
	}, nil
}

// Load reads persisted stats from disk. Returns found=false when no snapshot
// has been saved yet.
func (st *Store) Load() (PersistedStats, bool, error) {
	var persisted PersistedStats
	found := false

	err := st.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucketName))
		if b == nil {
			return nil
		}
		data := b.Get([]byte(statsKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &persisted); err != nil {
			return fmt.Errorf("failed to unmarshal persisted stats: %v", err)
		}
		found = true
		return nil
	})

	return persisted, found, err
}

// Save writes a snapshot of the given stats to disk
func (st *Store) Save(s *Stats) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %v", err)
	}

	return st.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucketName))
		if b == nil {
			return fmt.Errorf("stats bucket not found")
		}
		return b.Put([]byte(statsKey), data)
	})
}

// StartAutoSave persists stats periodically until Close is called
func (st *Store) StartAutoSave(s *Stats, interval time.Duration) {
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := st.Save(s); err != nil {
					log.Errorf("%s Failed to auto-save stats: %v", logcolors.LogStats, err)
				}
			case <-st.stopChan:
				return
			}
		}
	}()
	log.Infof("%s Auto-save started (interval: %v)", logcolors.LogStats, interval)
}

// Close saves a final snapshot and shuts down the store
func (st *Store) Close(s *Stats) error {
	close(st.stopChan)
	st.wg.Wait()

	if err := st.Save(s); err != nil {
		log.Errorf("%s Failed to save stats on close: %v", logcolors.LogStats, err)
	}
	return st.db.Close()
}

package broadcast

import (
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/allinone/backend/internal/storage/models"
)

const shardCount = 32

// RecentSet is the capped working set of active incidents backing the
// recent-activity view. Records are keyed by id and sharded so replacing one
// incident never blocks writers touching unrelated ids; there is no global
// lock. Create and update share the same replace-by-id semantics, so a
// record can never appear twice.
type RecentSet struct {
	shards [shardCount]recentShard
	cap    int
	count  int64
}

type recentShard struct {
	mu      sync.RWMutex
	records map[string]models.IncidentRecord
}

func NewRecentSet(capacity int) *RecentSet {
	if capacity <= 0 {
		capacity = 100
	}
	rs := &RecentSet{cap: capacity}
	for i := range rs.shards {
		rs.shards[i].records = make(map[string]models.IncidentRecord)
	}
	return rs
}

func (rs *RecentSet) shardFor(id string) *recentShard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &rs.shards[h.Sum32()%shardCount]
}

// Put inserts or replaces the record and reports whether it was new. When
// the cap is exceeded the oldest record is evicted.
func (rs *RecentSet) Put(record models.IncidentRecord) bool {
	shard := rs.shardFor(record.ID)

	shard.mu.Lock()
	_, exists := shard.records[record.ID]
	shard.records[record.ID] = record
	shard.mu.Unlock()

	if exists {
		return false
	}

	if atomic.AddInt64(&rs.count, 1) > int64(rs.cap) {
		rs.evictOldest()
	}
	return true
}

func (rs *RecentSet) Get(id string) (models.IncidentRecord, bool) {
	shard := rs.shardFor(id)
	shard.mu.RLock()
	record, ok := shard.records[id]
	shard.mu.RUnlock()
	return record, ok
}

func (rs *RecentSet) Len() int {
	return int(atomic.LoadInt64(&rs.count))
}

// Recent returns up to limit records, most recent first. A limit <= 0 means
// the whole working set.
func (rs *RecentSet) Recent(limit int) []models.IncidentRecord {
	records := rs.snapshot()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

func (rs *RecentSet) snapshot() []models.IncidentRecord {
	records := make([]models.IncidentRecord, 0, rs.Len())
	for i := range rs.shards {
		shard := &rs.shards[i]
		shard.mu.RLock()
		for _, record := range shard.records {
			records = append(records, record)
		}
		shard.mu.RUnlock()
	}
	return records
}

func (rs *RecentSet) evictOldest() {
	var oldestID string
	first := true
	var oldest models.IncidentRecord

	for _, record := range rs.snapshot() {
		if first || record.CreatedAt.Before(oldest.CreatedAt) {
			oldest = record
			oldestID = record.ID
			first = false
		}
	}
	if oldestID == "" {
		return
	}

	shard := rs.shardFor(oldestID)
	shard.mu.Lock()
	if _, ok := shard.records[oldestID]; ok {
		delete(shard.records, oldestID)
		atomic.AddInt64(&rs.count, -1)
	}
	shard.mu.Unlock()
}

// Package cache persists expensive analysis results to disk with TTL-based
// staleness. Entries are append-only: a write never overwrites a prior entry
// for the same key, and reads resolve races by taking the freshest entry.
// All failures inside the store are soft; callers treat every read as
// satisfiable-null and fall through to live computation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation classes map to subdirectories of the base dir.
const (
	OpQuery     = "query"
	OpSchema    = "schema"
	OpDiscovery = "discovery"
	OpAnalysis  = "analysis"
)

// Entry is the on-disk shape of a cache write.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Operation string          `json:"operation"`
	Scope     string          `json:"scope,omitempty"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
}

// Provenance describes where and when a cache hit was originally computed.
type Provenance struct {
	Hit        bool      `json:"hit"`
	CachedAt   time.Time `json:"cached_at"`
	AgeSeconds int64     `json:"age_seconds"`
	Location   string    `json:"location,omitempty"`
}

// Store is a content-keyed, TTL-bounded analysis cache. The disk tier is the
// source of truth; a ristretto memory tier fronts it so repeated reads inside
// one process skip the filesystem.
type Store struct {
	baseDir  string
	enabled  bool
	maxBytes int
	logger   *zap.Logger
	mem      *ristretto.Cache[string, Entry]
	now      func() time.Time
}

// New creates a cache store rooted at baseDir. A disabled store never reads
// or writes. If logger is nil, a no-op logger is used.
func New(baseDir string, enabled bool, maxBytes int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	var mem *ristretto.Cache[string, Entry]
	if enabled {
		var err error
		mem, err = ristretto.NewCache(&ristretto.Config[string, Entry]{
			NumCounters: 1 << 14,
			MaxCost:     1 << 26, // 64 MiB memory tier
			BufferItems: 64,
		})
		if err != nil {
			// Memory tier is an optimization; run disk-only without it.
			logger.Warn("failed to create memory cache tier", zap.Error(err))
			mem = nil
		}
	}

	return &Store{
		baseDir:  baseDir,
		enabled:  enabled,
		maxBytes: maxBytes,
		logger:   logger,
		mem:      mem,
		now:      time.Now,
	}
}

// Key derives the logical cache key for an operation, optional scope and
// optional input fingerprint. Identical inputs always produce identical keys.
func Key(operation, scope, fingerprint string) string {
	parts := []string{operation}
	if scope != "" {
		parts = append(parts, scope)
	}
	if fingerprint != "" {
		parts = append(parts, Fingerprint(fingerprint))
	}
	return strings.Join(parts, "__")
}

// Fingerprint returns a short stable hash of an input string, used to
// distinguish cache entries for the same operation and scope. Hash-based,
// not cryptographic: collision tolerance only.
func Fingerprint(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}

// FingerprintArgs fingerprints an argument bag by marshaling it to JSON.
// Map keys marshal in sorted order, so identical bags produce identical
// fingerprints.
func FingerprintArgs(args map[string]any) string {
	data, err := json.Marshal(args)
	if err != nil {
		return Fingerprint(fmt.Sprintf("%v", args))
	}
	return Fingerprint(string(data))
}

// Read returns the freshest stored payload for the key whose age is within
// ttl. A stale entry, a missing directory, or any filesystem error is a miss.
func (s *Store) Read(operation, scope, fingerprint string, ttl time.Duration) (json.RawMessage, *Provenance) {
	if !s.enabled {
		return nil, nil
	}

	key := Key(operation, scope, fingerprint)

	if s.mem != nil {
		if entry, ok := s.mem.Get(key); ok {
			if age := s.now().Sub(entry.Timestamp); age <= ttl {
				return entry.Payload, &Provenance{
					Hit:        true,
					CachedAt:   entry.Timestamp,
					AgeSeconds: int64(age.Seconds()),
				}
			}
		}
	}

	dir := s.opDir(operation)
	names, err := listEntryFiles(dir, key)
	if err != nil || len(names) == 0 {
		return nil, nil
	}

	// Filenames start with a zero-padded unix-nano timestamp, so the
	// lexicographically greatest name is the freshest entry.
	sort.Strings(names)
	freshest := names[len(names)-1]

	data, err := os.ReadFile(filepath.Join(dir, freshest))
	if err != nil {
		s.logger.Warn("failed to read cache entry", zap.String("file", freshest), zap.Error(err))
		return nil, nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("malformed cache entry", zap.String("file", freshest), zap.Error(err))
		return nil, nil
	}

	age := s.now().Sub(entry.Timestamp)
	if age > ttl {
		return nil, nil
	}

	if s.mem != nil {
		s.mem.SetWithTTL(key, entry, int64(len(entry.Payload)), ttl-age)
	}

	return entry.Payload, &Provenance{
		Hit:        true,
		CachedAt:   entry.Timestamp,
		AgeSeconds: int64(age.Seconds()),
		Location:   filepath.Join(dir, freshest),
	}
}

// Write persists a new timestamped entry for the key. It never overwrites:
// concurrent writers for the same key coexist and the reader takes the
// freshest. Returns the entry location, or "" on any (soft) failure.
func (s *Store) Write(payload any, operation, scope, fingerprint string) string {
	if !s.enabled {
		return ""
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to serialize cache payload", zap.String("operation", operation), zap.Error(err))
		return ""
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		s.logger.Warn("cache payload exceeds maximum size",
			zap.String("operation", operation),
			zap.Int("size", len(data)),
			zap.Int("max", s.maxBytes))
		return ""
	}

	key := Key(operation, scope, fingerprint)
	ts := s.now()

	entry := Entry{
		Timestamp: ts,
		Operation: operation,
		Scope:     scope,
		Key:       key,
		Payload:   data,
	}
	entryData, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("failed to serialize cache entry", zap.String("operation", operation), zap.Error(err))
		return ""
	}

	dir := s.opDir(operation)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("failed to create cache directory", zap.String("dir", dir), zap.Error(err))
		return ""
	}

	// Zero-padded nanos keep lexicographic order equal to chronological
	// order; the uuid suffix keeps same-nanosecond writers from colliding.
	name := fmt.Sprintf("%020d__%s__%s.json", ts.UnixNano(), key, uuid.NewString()[:8])
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, entryData, 0o644); err != nil {
		s.logger.Warn("failed to write cache entry", zap.String("file", path), zap.Error(err))
		return ""
	}

	if s.mem != nil {
		s.mem.Set(key, entry, int64(len(data)))
	}

	return path
}

// opDir maps an operation class to its subdirectory. Query results are
// further partitioned by date so housekeeping can drop whole days.
func (s *Store) opDir(operation string) string {
	switch operation {
	case OpQuery:
		return filepath.Join(s.baseDir, "queries", s.now().Format("2006-01-02"))
	case OpSchema:
		return filepath.Join(s.baseDir, "schema-snapshots")
	case OpDiscovery:
		return filepath.Join(s.baseDir, "reports", "discovery-reports")
	case OpAnalysis:
		return filepath.Join(s.baseDir, "reports", "table-analyses")
	default:
		return filepath.Join(s.baseDir, operation)
	}
}

// listEntryFiles returns the filenames in dir belonging to key.
func listEntryFiles(dir, key string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	marker := "__" + key + "__"
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.Contains(e.Name(), marker) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

package certstamp

import (
	"sync"
	"time"
)

// CertificateCache is an in-memory cache of certificate records with TTL.
// It backs the dashboard and the public stamp form; writes go to the Store
// and call Invalidate.
type CertificateCache struct {
	mu      sync.RWMutex
	records []Certificate
	byKey   map[string]Certificate
	fetched time.Time
	ttl     time.Duration
	store   RecordStore
}

// NewCertificateCache creates a CertificateCache backed by the given store.
func NewCertificateCache(s RecordStore, ttl time.Duration) *CertificateCache {
	return &CertificateCache{store: s, ttl: ttl}
}

func (c *CertificateCache) valid() bool {
	return c.records != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *CertificateCache) Invalidate() {
	c.mu.Lock()
	c.records = nil
	c.byKey = nil
	c.mu.Unlock()
}

func (c *CertificateCache) load() error {
	if c.valid() {
		return nil
	}
	records, err := c.store.ListCertificates()
	if err != nil {
		return err
	}
	if records == nil {
		records = []Certificate{}
	}
	// Records are newest first, so the first one seen wins for a key.
	byKey := make(map[string]Certificate, len(records))
	for _, r := range records {
		if _, ok := byKey[r.CourseKey]; !ok {
			byKey[r.CourseKey] = r
		}
	}
	c.records = records
	c.byKey = byKey
	c.fetched = time.Now()
	return nil
}

func (c *CertificateCache) ensureLoaded() ([]Certificate, map[string]Certificate, error) {
	c.mu.RLock()
	if c.valid() {
		records, byKey := c.records, c.byKey
		c.mu.RUnlock()
		return records, byKey, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.records, c.byKey, nil
}

// List returns every record, newest first.
func (c *CertificateCache) List() ([]Certificate, error) {
	records, _, err := c.ensureLoaded()
	return records, err
}

// ByCourse returns the newest record for a sanitized course key.
func (c *CertificateCache) ByCourse(key string) (Certificate, error) {
	_, byKey, err := c.ensureLoaded()
	if err != nil {
		return Certificate{}, err
	}
	r, ok := byKey[key]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return r, nil
}

// Package container keeps the classes of opened jars, directories and
// snapshots, keyed by container id and internal class name. A Table is the
// resolver the class renderer looks inner classes up in.
package container

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/jda/java"
)

// DefaultCacheSize bounds the number of parsed class models kept per table.
const DefaultCacheSize = 1024

var ErrUnsupported = errors.New("unsupported container")

var log = commonlog.GetLogger("jda.container")

type key struct {
	container string
	name      string
}

// Table stores raw class bytes and parses them on first lookup. Models added
// with AddModel are kept as they are and never evicted.
type Table struct {
	mu     sync.RWMutex
	raw    map[string]map[string][]byte
	models map[string]map[string]*java.ClassModel
	cache  *lru.Cache[key, *java.ClassModel]
}

func NewTable(cacheSize int) (*Table, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[key, *java.ClassModel](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create model cache: %w", err)
	}
	return &Table{
		raw:    make(map[string]map[string][]byte),
		models: make(map[string]map[string]*java.ClassModel),
		cache:  cache,
	}, nil
}

// Add stores the bytes of class name in containerID, replacing any earlier
// entry of the same name.
func (t *Table) Add(containerID, name string, data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.raw[containerID] == nil {
		t.raw[containerID] = make(map[string][]byte)
	}
	t.raw[containerID][name] = data
	delete(t.models[containerID], name)
	t.cache.Remove(key{containerID, name})
}

func (t *Table) AddModel(containerID string, m *java.ClassModel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.models[containerID] == nil {
		t.models[containerID] = make(map[string]*java.ClassModel)
	}
	t.models[containerID][m.Name] = m
	delete(t.raw[containerID], m.Name)
	t.cache.Remove(key{containerID, m.Name})
}

// Remove forgets a container.
func (t *Table) Remove(containerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name := range t.raw[containerID] {
		t.cache.Remove(key{containerID, name})
	}
	delete(t.raw, containerID)
	delete(t.models, containerID)
}

// Resolve returns the model of name in containerID. Entries that fail to
// parse are logged and reported as missing.
func (t *Table) Resolve(containerID, name string) (*java.ClassModel, bool) {
	t.mu.RLock()
	if m, ok := t.models[containerID][name]; ok {
		t.mu.RUnlock()
		return m, true
	}
	data, ok := t.raw[containerID][name]
	t.mu.RUnlock()
	if !ok {
		return nil, false
	}

	k := key{containerID, name}
	if m, ok := t.cache.Get(k); ok {
		return m, true
	}
	m, err := java.ClassModelFromBytes(data)
	if err != nil {
		log.Warningf("%s: %s: %s", containerID, name, err.Error())
		return nil, false
	}

	// The entry may have been replaced while parsing; only cache a model of
	// the bytes still stored.
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.raw[containerID][name]; ok && bytes.Equal(cur, data) {
		t.cache.Add(k, m)
	}
	return m, true
}

// Names lists the classes of containerID in sorted order.
func (t *Table) Names(containerID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var names []string
	for name := range t.raw[containerID] {
		names = append(names, name)
	}
	for name := range t.models[containerID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Containers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := make(map[string]bool)
	for id := range t.raw {
		seen[id] = true
	}
	for id := range t.models {
		seen[id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t *Table) Has(containerID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, raw := t.raw[containerID]
	_, models := t.models[containerID]
	return raw || models
}

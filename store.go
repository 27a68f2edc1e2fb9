package cfr

import (
	"fmt"

	"github.com/golang/glog"
)

// NodeStore maps information-set keys to their Nodes. Keys are opaque byte
// strings compared byte-wise. Nodes are created lazily on first visit and
// uniquely owned by the store.
type NodeStore interface {
	// GetOrCreate returns the Node for the given key, creating it with the
	// given action count on first visit.
	GetOrCreate(key string, numActions int) *Node
	// Get returns the Node for the given key if it exists.
	Get(key string) (*Node, bool)
	// Len returns the number of information sets in the store.
	Len() int
	// ForEach calls fn for every node in the store. Mutations made by fn
	// are persisted by implementations that keep nodes on disk.
	ForEach(fn func(key string, node *Node))
	// Flush persists nodes handed out since the last call, for stores that
	// keep nodes on disk. In-memory stores treat it as a no-op.
	Flush() error
	// Close releases any resources held by the store.
	Close() error
}

// MapStore is the default in-memory NodeStore.
type MapStore struct {
	nodes map[string]*Node
}

var _ NodeStore = (*MapStore)(nil)

// NewMapStore returns an empty in-memory NodeStore.
func NewMapStore() *MapStore {
	return &MapStore{nodes: make(map[string]*Node)}
}

// GetOrCreate implements NodeStore.
func (s *MapStore) GetOrCreate(key string, numActions int) *Node {
	if node, ok := s.nodes[key]; ok {
		if node.NumActions() != numActions {
			panic(fmt.Errorf("node has n_actions=%v but game has n_actions=%v: %q",
				node.NumActions(), numActions, key))
		}
		return node
	}

	node := NewNode(numActions)
	s.nodes[key] = node
	if len(s.nodes)%100000 == 0 {
		glog.V(2).Infof("%d infosets", len(s.nodes))
	}
	return node
}

// Get implements NodeStore.
func (s *MapStore) Get(key string) (*Node, bool) {
	node, ok := s.nodes[key]
	return node, ok
}

// Len implements NodeStore.
func (s *MapStore) Len() int {
	return len(s.nodes)
}

// ForEach implements NodeStore.
func (s *MapStore) ForEach(fn func(key string, node *Node)) {
	for key, node := range s.nodes {
		fn(key, node)
	}
}

// Flush implements NodeStore.
func (s *MapStore) Flush() error {
	return nil
}

// Close implements NodeStore.
func (s *MapStore) Close() error {
	return nil
}

// Package ldbstore provides a cfr.NodeStore backed by a LevelDB database,
// for games whose info-set tables do not fit in memory.
//
// Nodes handed out since the last Flush are pinned in memory so that the
// recursion always mutates a single live copy; Flush writes them back and
// demotes them to an LRU read cache. The Trainer flushes at the end of
// every outer iteration.
package ldbstore

import (
	"fmt"

	"github.com/golang/glog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	cfr "github.com/AndrewBlackwell/GRASP"
)

// Store implements cfr.NodeStore on a LevelDB database.
type Store struct {
	path  string
	db    *leveldb.DB
	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions

	live  map[string]*cfr.Node
	cache *lru.Cache
	n     int
}

var _ cfr.NodeStore = (*Store)(nil)

// New opens (or creates) a Store at the given directory path. cacheSize
// bounds the number of clean nodes kept in memory between flushes.
func New(path string, opts *opt.Options, cacheSize int) (*Store, error) {
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, err
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		path:  path,
		db:    db,
		live:  make(map[string]*cfr.Node),
		cache: cache,
	}

	iter := db.NewIterator(nil, s.rOpts)
	for iter.Next() {
		s.n++
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// GetOrCreate implements cfr.NodeStore.
func (s *Store) GetOrCreate(key string, numActions int) *cfr.Node {
	node, ok := s.lookup(key)
	if !ok {
		node = cfr.NewNode(numActions)
		s.live[key] = node
		s.n++
		if s.n%100000 == 0 {
			glog.V(2).Infof("%d infosets", s.n)
		}
		return node
	}

	if node.NumActions() != numActions {
		panic(fmt.Errorf("node has n_actions=%v but game has n_actions=%v: %q",
			node.NumActions(), numActions, key))
	}
	return node
}

// Get implements cfr.NodeStore.
func (s *Store) Get(key string) (*cfr.Node, bool) {
	return s.lookup(key)
}

// lookup pins the node for key into the live set, decoding it from the
// database if necessary.
func (s *Store) lookup(key string) (*cfr.Node, bool) {
	if node, ok := s.live[key]; ok {
		return node, true
	}

	if v, ok := s.cache.Get(key); ok {
		node := v.(*cfr.Node)
		s.cache.Remove(key)
		s.live[key] = node
		return node, true
	}

	data, err := s.db.Get([]byte(key), s.rOpts)
	if err == leveldb.ErrNotFound {
		return nil, false
	} else if err != nil {
		panic(err)
	}

	node := new(cfr.Node)
	if err := node.GobDecode(data); err != nil {
		panic(err)
	}
	s.live[key] = node
	return node, true
}

// Len implements cfr.NodeStore.
func (s *Store) Len() int {
	return s.n
}

// ForEach implements cfr.NodeStore. It flushes the live set, then streams
// every node from the database, writing each back after the callback so
// that mutations made by fn persist.
func (s *Store) ForEach(fn func(key string, node *cfr.Node)) {
	if err := s.Flush(); err != nil {
		panic(err)
	}
	s.cache.Purge()

	iter := s.db.NewIterator(nil, s.rOpts)
	defer iter.Release()
	for iter.Next() {
		key := string(iter.Key())
		node := new(cfr.Node)
		if err := node.GobDecode(iter.Value()); err != nil {
			panic(err)
		}

		fn(key, node)

		data, err := node.GobEncode()
		if err != nil {
			panic(err)
		}
		if err := s.db.Put([]byte(key), data, s.wOpts); err != nil {
			panic(err)
		}
	}
	if err := iter.Error(); err != nil {
		panic(err)
	}
}

// Flush implements cfr.NodeStore: every node handed out since the last
// flush is written back in one batch and demoted to the read cache.
func (s *Store) Flush() error {
	if len(s.live) == 0 {
		return nil
	}

	batch := new(leveldb.Batch)
	for key, node := range s.live {
		data, err := node.GobEncode()
		if err != nil {
			return err
		}
		batch.Put([]byte(key), data)
	}

	if err := s.db.Write(batch, s.wOpts); err != nil {
		return err
	}

	for key, node := range s.live {
		s.cache.Add(key, node)
	}
	s.live = make(map[string]*cfr.Node)
	return nil
}

// Close implements cfr.NodeStore.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

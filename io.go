package cfr

import (
	"encoding/gob"
	"io"
	"os"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// The strategy artifact is a gzip-compressed gob stream: the number of
// information sets, then one (key, averageStrategy) record per set. Only
// the average strategy survives persistence; regrets and strategy sums are
// discarded, so loaded nodes are frozen and read-only.

// WriteStrategies serializes the average strategy of every node in the
// store to w.
func WriteStrategies(w io.Writer, store NodeStore) error {
	zw := gzip.NewWriter(w)
	enc := gob.NewEncoder(zw)

	if err := enc.Encode(store.Len()); err != nil {
		return err
	}

	var encErr error
	store.ForEach(func(key string, node *Node) {
		if encErr != nil {
			return
		}
		if err := enc.Encode(key); err != nil {
			encErr = err
			return
		}
		if err := enc.Encode(node.AverageStrategy()); err != nil {
			encErr = err
		}
	})
	if encErr != nil {
		return encErr
	}

	return zw.Close()
}

// ReadStrategies loads a strategy artifact written by WriteStrategies. The
// returned nodes are frozen: only AverageStrategy and NumActions are valid.
func ReadStrategies(r io.Reader) (map[string]*Node, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)

	var numStrategies int
	if err := dec.Decode(&numStrategies); err != nil {
		return nil, err
	}

	nodes := make(map[string]*Node, numStrategies)
	for i := 0; i < numStrategies; i++ {
		var key string
		if err := dec.Decode(&key); err != nil {
			return nil, err
		}

		var avg []float64
		if err := dec.Decode(&avg); err != nil {
			return nil, err
		}

		nodes[key] = newFrozenNode(avg)
	}

	return nodes, nil
}

// LoadStrategyFile reads the strategy artifact at the given path.
func LoadStrategyFile(path string) (map[string]*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening strategy %v", path)
	}
	defer f.Close()

	nodes, err := ReadStrategies(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading strategy %v", path)
	}

	return nodes, nil
}

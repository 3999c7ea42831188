package cas

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgryski/go-farm"
)

// CAS is a content-addressed store keyed by the farm hash of an item's
// serialized bytes.
type CAS interface {
	Put(item Hashable) (Hash, error)
	Has(hash Hash) bool
	Get(hash Hash) ([]byte, bool)
}

// MeteredCAS is a CAS that reports how much it holds.
type MeteredCAS interface {
	CAS
	Stats() CacheStats
}

type Serde interface {
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
}

type Hashable interface {
	Serde
}

type Hash uint64

func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// Encode serializes item and returns its bytes with their hash.
func Encode(item Hashable) (Hash, []byte, error) {
	var buf bytes.Buffer
	if err := item.Serialize(&buf); err != nil {
		return 0, nil, err
	}
	data := buf.Bytes()
	return Hash(farm.Hash64(data)), data, nil
}

// Retrieve decodes the item stored under hash.
func Retrieve[T any, PT interface {
	*T
	Serde
}](c CAS, hash Hash) (PT, error) {
	data, ok := c.Get(hash)
	if !ok {
		return nil, fmt.Errorf("hash not found in CAS: %s", hash)
	}
	out := PT(new(T))
	if err := out.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("deserializing %s: %w", hash, err)
	}
	return out, nil
}

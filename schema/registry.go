package schema

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compiled schemas by reference
var (
	mu       sync.RWMutex
	registry = make(map[string]*jsonschema.Schema)
)

func lookup(ref string) *jsonschema.Schema {
	mu.RLock()
	defer mu.RUnlock()
	return registry[ref]
}

func register(ref string, s *jsonschema.Schema) {
	mu.Lock()
	defer mu.Unlock()
	registry[ref] = s
}

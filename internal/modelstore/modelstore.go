// Package modelstore persists model generations across processes.
package modelstore

import (
	"sync"

	"github.com/codiehq/codesight/internal/contract"
)

// StoreManagerImpl manages the process-wide ModelStore instance.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointer during initialization
	store        contract.ModelStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetModelStore returns the configured ModelStore.
func (mgr *StoreManagerImpl) GetModelStore() contract.ModelStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}

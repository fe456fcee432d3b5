package movement

import "sync"

// SKULocker serializa las sincronizaciones de un mismo SKU. Se inyecta en SyncUseCase;
// sin locker el motor asume que el caller garantiza una sola sync en vuelo por SKU.
type SKULocker interface {
	Lock(sku string) (unlock func())
}

// KeyedMutex mutex por clave con conteo de referencias; las entradas se liberan al quedar sin uso.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex construye el locker.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock bloquea sku y devuelve la función que lo libera.
func (k *KeyedMutex) Lock(sku string) func() {
	k.mu.Lock()
	e, ok := k.locks[sku]
	if !ok {
		e = &keyedEntry{}
		k.locks[sku] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, sku)
		}
		k.mu.Unlock()
	}
}

// Len número de claves con lock activo o en espera.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

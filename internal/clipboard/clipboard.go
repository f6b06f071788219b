// Package clipboard holds components cut or copied between trees.
package clipboard

import (
	"sync"

	"github.com/planforge/planforge/internal/codec"
	"github.com/planforge/planforge/internal/component"
)

// Clipboard is a list of cloned components. Pushed components get fresh ids
// so pasting the same entry twice never duplicates identity.
type Clipboard struct {
	mu    sync.Mutex
	items []component.Component
}

func New() *Clipboard {
	return &Clipboard{}
}

// Push clones the component onto the clipboard with regenerated ids.
func (cb *Clipboard) Push(c component.Component) error {
	clone, err := codec.Clone(c, true)
	if err != nil {
		return err
	}
	cb.mu.Lock()
	cb.items = append(cb.items, clone)
	cb.mu.Unlock()
	return nil
}

// Items returns fresh-id clones of everything on the clipboard, newest last.
func (cb *Clipboard) Items() ([]component.Component, error) {
	cb.mu.Lock()
	held := make([]component.Component, len(cb.items))
	copy(held, cb.items)
	cb.mu.Unlock()

	out := make([]component.Component, 0, len(held))
	for _, c := range held {
		clone, err := codec.Clone(c, true)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}
	return out, nil
}

// Len returns how many entries are held.
func (cb *Clipboard) Len() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return len(cb.items)
}

// Remove drops the entry at the index. Out-of-range indexes are ignored.
func (cb *Clipboard) Remove(i int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if i < 0 || i >= len(cb.items) {
		return
	}
	cb.items = append(cb.items[:i], cb.items[i+1:]...)
}

// Clear empties the clipboard.
func (cb *Clipboard) Clear() {
	cb.mu.Lock()
	cb.items = nil
	cb.mu.Unlock()
}

package store

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// index mapa por ID con orden de inserción para iterar y reportar.
type index[T any] struct {
	byID  map[int64]T
	order []int64
}

func newIndex[T any]() *index[T] {
	return &index[T]{byID: make(map[int64]T)}
}

func (ix *index[T]) put(id int64, v T) {
	if _, ok := ix.byID[id]; !ok {
		ix.order = append(ix.order, id)
	}
	ix.byID[id] = v
}

func (ix *index[T]) get(id int64) (T, bool) {
	v, ok := ix.byID[id]
	return v, ok
}

func (ix *index[T]) remove(id int64) bool {
	if _, ok := ix.byID[id]; !ok {
		return false
	}
	delete(ix.byID, id)
	if i := slices.Index(ix.order, id); i >= 0 {
		ix.order = slices.Delete(ix.order, i, i+1)
	}
	return true
}

func (ix *index[T]) len() int { return len(ix.byID) }

// each recorre en orden de inserción; fn devuelve false para cortar.
func (ix *index[T]) each(fn func(T) bool) {
	for _, id := range ix.order {
		if !fn(ix.byID[id]) {
			return
		}
	}
}

func (ix *index[T]) reset() {
	ix.byID = make(map[int64]T)
	ix.order = nil
}

// fold normaliza nombres para comparaciones insensibles a mayúsculas (incluye acentos en mayúscula: "PIÑA" == "piña").
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func sameName(a, b string) bool {
	return fold(a) == fold(b)
}

func removeID(ids []int64, id int64) []int64 {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

package utils

import (
	"cmp"
	"slices"
)

// OrderedList is a list that is kept sorted on every insert.
type OrderedList[T cmp.Ordered] struct {
	list []T
}

func NewOrderedList[T cmp.Ordered]() *OrderedList[T] {
	return &OrderedList[T]{
		list: make([]T, 0),
	}
}

func (o *OrderedList[T]) Len() int {
	return len(o.list)
}

func (o *OrderedList[T]) Add(item T) *OrderedList[T] {
	i, _ := slices.BinarySearch(o.list, item)
	o.list = slices.Insert(o.list, i, item)
	return o
}

// Items returns a copy of the sorted items.
func (o *OrderedList[T]) Items() []T {
	return slices.Clone(o.list)
}

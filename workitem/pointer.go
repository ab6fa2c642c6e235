package workitem

import (
	"container/list"
	"unsafe"
)

// pointerOf exposes the stable address of a list element as an
// unsafe.Pointer (idOf converts it into a JobID),
// realizing the id-as-pointer pattern: the
// element's address never changes for the life of the node, unlike an
// index into a growable slice would.
func pointerOf(elem *list.Element) unsafe.Pointer {
	return unsafe.Pointer(elem) //nolint:govet // intentional address-as-id, see package doc
}

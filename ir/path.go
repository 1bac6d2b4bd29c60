package ir

import (
	"strconv"
	"strings"
)

// RootPath is the path of a document root.
const RootPath = "$"

// FieldPath extends the path p with the object key f.
func FieldPath(p string, f *Node) string {
	k := f.Text()
	if k != "" && strings.IndexAny(k, "'.*$[] ") == -1 {
		return p + "." + k
	}
	return p + ".'" + strings.ReplaceAll(k, "'", "\\'") + "'"
}

// IndexPath extends the path p with the array index i.
func IndexPath(p string, i int) string {
	return p + "[" + strconv.Itoa(i) + "]"
}

//go:build debug

package octree

import "fmt"

func assert(truth bool, msg ...interface{}) bool {
	if !truth {
		panic(fmt.Sprint("Assertion failed: ", msg))
	}
	return truth
}

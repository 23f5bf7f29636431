//go:build !debug

package octree

import (
	"fmt"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// assert reports an internal consistency violation. Callers abort the current
// operation when it returns false.
func assert(truth bool, msg ...interface{}) bool {
	if !truth {
		logs.WithTag("assertion", fmt.Sprint(msg...)).
			Error(errors.New("octree internal consistency violation"))
	}
	return truth
}

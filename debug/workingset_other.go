//go:build !windows

package debug

import "errors"

func readWorkingSet() (workingSet, error) {
	return workingSet{}, errors.New("working set only reported on windows")
}

//go:build windows

package native

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func dlopen(path string) (*library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLibrary: %w", err)
	}
	return &library{
		lookup: func(name string) (uintptr, error) {
			proc, err := dll.FindProc(name)
			if err != nil {
				return 0, err
			}
			return proc.Addr(), nil
		},
		close: dll.Release,
	}, nil
}

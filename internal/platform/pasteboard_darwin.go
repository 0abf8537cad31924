//go:build darwin

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"
)

var (
	initOnce sync.Once
	initErr  error

	selAlloc             objc.SEL
	selInit              objc.SEL
	selRelease           objc.SEL
	selGeneralPasteboard objc.SEL
	selChangeCount       objc.SEL
	selTypes             objc.SEL
	selCount             objc.SEL
	selObjectAtIndex     objc.SEL
	selUTF8String        objc.SEL
)

func ensureRuntime() error {
	initOnce.Do(func() {
		if _, err := purego.Dlopen("/usr/lib/libobjc.A.dylib", purego.RTLD_GLOBAL); err != nil {
			initErr = fmt.Errorf("load libobjc: %w", err)
			return
		}
		if _, err := purego.Dlopen("/System/Library/Frameworks/AppKit.framework/AppKit", purego.RTLD_GLOBAL); err != nil {
			initErr = fmt.Errorf("load AppKit: %w", err)
			return
		}
		selAlloc = objc.RegisterName("alloc")
		selInit = objc.RegisterName("init")
		selRelease = objc.RegisterName("release")
		selGeneralPasteboard = objc.RegisterName("generalPasteboard")
		selChangeCount = objc.RegisterName("changeCount")
		selTypes = objc.RegisterName("types")
		selCount = objc.RegisterName("count")
		selObjectAtIndex = objc.RegisterName("objectAtIndex:")
		selUTF8String = objc.RegisterName("UTF8String")
	})
	return initErr
}

// withPasteboard runs fn with the general pasteboard inside an autorelease
// pool on a locked thread.
func withPasteboard(fn func(pb objc.ID) error) error {
	if err := ensureRuntime(); err != nil {
		return err
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	pool := objc.ID(objc.GetClass("NSAutoreleasePool")).Send(selAlloc).Send(selInit)
	if pool != 0 {
		defer pool.Send(selRelease)
	}

	pb := objc.ID(objc.GetClass("NSPasteboard")).Send(selGeneralPasteboard)
	if pb == 0 {
		return fmt.Errorf("NSPasteboard generalPasteboard returned nil")
	}
	return fn(pb)
}

// ClipboardTypes returns the type identifiers on the general pasteboard.
func ClipboardTypes() ([]string, error) {
	var types []string
	err := withPasteboard(func(pb objc.ID) error {
		arr := pb.Send(selTypes)
		if arr == 0 {
			return nil
		}
		n := objc.Send[uint](arr, selCount)
		types = make([]string, 0, n)
		for i := uint(0); i < n; i++ {
			types = append(types, nsStringToGo(arr.Send(selObjectAtIndex, i)))
		}
		return nil
	})
	return types, err
}

// ChangeCount returns the general pasteboard's changeCount.
func ChangeCount() (int64, error) {
	var n int64
	err := withPasteboard(func(pb objc.ID) error {
		n = objc.Send[int64](pb, selChangeCount)
		return nil
	})
	return n, err
}

func nsStringToGo(v objc.ID) string {
	if v == 0 {
		return ""
	}
	ptr := objc.Send[unsafe.Pointer](v, selUTF8String)
	if ptr == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	// The buffer belongs to the NSString; copy it out.
	return string(unsafe.Slice((*byte)(ptr), n))
}

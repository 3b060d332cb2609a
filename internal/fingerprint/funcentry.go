package fingerprint

import "reflect"

// funcEntry returns the entry program counter for a Go function value,
// panicking if fn is not a func. Used by FromFunc to locate the function in
// runtime metadata.
func funcEntry(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic("fingerprint: FromFunc requires a function value")
	}
	return v.Pointer()
}

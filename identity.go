package cachify

import (
	"reflect"
	"runtime"
)

// functionID is the fully qualified symbol name of fn, e.g.
// "github.com/acme/app/users.(*Repo).Load". Closures share the name of the
// literal they come from.
func functionID(fn any) string {
	if !isFunc(fn) {
		return ""
	}
	v := reflect.ValueOf(fn)
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	return rf.Name()
}

func isFunc(fn any) bool {
	v := reflect.ValueOf(fn)
	return v.Kind() == reflect.Func && !v.IsNil()
}

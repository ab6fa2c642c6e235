package workitem

import (
	"hash/fnv"
	"reflect"
	"runtime"
)

// TypeOf derives a JobType from a callable's identity, so that repeated
// submissions of "the same kind of work" land on the same predictor
// estimator.
//
// Go gives no guarantee that a closure value's address is stable the way a
// C++ lambda's or an Objective-C block's invoke trampoline is, which is
// what the original runtime's work_type trait relied on. Instead, TypeOf
// hashes the function's runtime name (runtime.FuncForPC) together with its
// reflect.Type string -- stable across repeated calls for "the same kind of
// work", and distinct for distinct call sites or distinct concrete closure
// types, without depending on address stability.
func TypeOf(fn any) JobType {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return JobType(hashString(reflect.TypeOf(fn).String()))
	}

	name := ""
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		name = f.Name()
	}

	return JobType(hashString(name + "|" + v.Type().String()))
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))

	return h.Sum64()
}

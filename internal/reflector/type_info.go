// Package reflector derives stable type names for message routing.
package reflector

import (
	"reflect"
	"sync"
)

var (
	muCache sync.RWMutex
	cache   = make(map[reflect.Type]TypeInfo)
)

type TypeInfo struct {
	Name string
	Type reflect.Type
}

func TypeInfoOf(x any) TypeInfo {
	return TypeInfoForType(reflect.TypeOf(x))
}

func TypeInfoFor[T any]() TypeInfo {
	return TypeInfoForType(reflect.TypeOf((*T)(nil)).Elem())
}

func TypeInfoForType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}

	muCache.RLock()
	ti, ok := cache[t]
	muCache.RUnlock()
	if ok {
		return ti
	}

	rt := t
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	ti = TypeInfo{
		Name: rt.PkgPath() + "." + rt.Name(),
		Type: rt,
	}

	muCache.Lock()
	cache[t] = ti
	muCache.Unlock()
	return ti
}

//go:build js && wasm

package storage

import (
	"fmt"
	"syscall/js"
)

// LocalStorage is backed by window.localStorage.
type LocalStorage struct {
	ls js.Value
}

func NewLocalStorage() (*LocalStorage, error) {
	ls := js.Global().Get("localStorage")
	if ls.IsUndefined() || ls.IsNull() {
		return nil, ErrUnavailable
	}
	return &LocalStorage{ls: ls}, nil
}

func (s *LocalStorage) GetItem(key string) (value string, ok bool, err error) {
	defer recoverJS(&err)
	v := s.ls.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

// SetItem reports quota and privacy-mode exceptions as errors.
func (s *LocalStorage) SetItem(key, value string) (err error) {
	if key == "" {
		return ErrInvalidKey
	}
	defer recoverJS(&err)
	s.ls.Call("setItem", key, value)
	return nil
}

func (s *LocalStorage) RemoveItem(key string) (err error) {
	defer recoverJS(&err)
	s.ls.Call("removeItem", key)
	return nil
}

func recoverJS(err *error) {
	if r := recover(); r != nil {
		if jsErr, ok := r.(js.Error); ok {
			*err = fmt.Errorf("localStorage: %s", jsErr.Error())
			return
		}
		panic(r)
	}
}

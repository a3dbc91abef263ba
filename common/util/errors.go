// Copyright 2024 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind classifies numeric failures. A Kind is itself an error so that
// errors.Is(err, util.DivideByZero) matches any *Error of that kind.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

const (
	DivideByZero    = Kind("divide by zero")
	OutOfRange      = Kind("out of range")
	InvalidArgument = Kind("invalid argument")
	BadAlloc        = Kind("bad alloc")
)

// Error is a failure of a matrix or statistics operation. It records the
// function, file and line that raised it.
type Error struct {
	Kind     Kind
	Message  string
	Function string
	File     string
	Line     int
}

// Errorf creates an *Error of the given kind located at its caller.
func Errorf(kind Kind, format string, args ...any) error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if pc, file, line, ok := runtime.Caller(1); ok {
		e.File = filepath.Base(file)
		e.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			name := fn.Name()
			e.Function = name[strings.LastIndex(name, "/")+1:]
		}
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s on: %s in: %s line: %d", e.Kind, e.Message, e.Function, e.File, e.Line)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

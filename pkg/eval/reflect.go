package eval

import "reflect"

var sliceOfAny = reflect.TypeOf([]any{})

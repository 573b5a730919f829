package logger

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type kind uint8

const (
	kindString kind = iota
	kindInt
	kindFloat
	kindBool
	kindError
	kindAny
)

// Field is one typed key/value pair attached to a log event.
type Field struct {
	key  string
	kind kind
	s    string
	i    int64
	f    float64
	b    bool
	err  error
	any  any
}

func (f Field) event(e *zerolog.Event) {
	switch f.kind {
	case kindString:
		e.Str(f.key, f.s)
	case kindInt:
		e.Int64(f.key, f.i)
	case kindFloat:
		e.Float64(f.key, f.f)
	case kindBool:
		e.Bool(f.key, f.b)
	case kindError:
		e.AnErr(f.key, f.err)
	default:
		e.Interface(f.key, f.any)
	}
}

func (f Field) context(c zerolog.Context) zerolog.Context {
	switch f.kind {
	case kindString:
		return c.Str(f.key, f.s)
	case kindInt:
		return c.Int64(f.key, f.i)
	case kindFloat:
		return c.Float64(f.key, f.f)
	case kindBool:
		return c.Bool(f.key, f.b)
	case kindError:
		return c.AnErr(f.key, f.err)
	default:
		return c.Interface(f.key, f.any)
	}
}

func String(key, value string) Field { return Field{key: key, kind: kindString, s: value} }

func Int(key string, value int) Field { return Field{key: key, kind: kindInt, i: int64(value)} }

func Float64(key string, value float64) Field { return Field{key: key, kind: kindFloat, f: value} }

func Bool(key string, value bool) Field { return Field{key: key, kind: kindBool, b: value} }

func Any(key string, value any) Field { return Field{key: key, kind: kindAny, any: value} }

// Error records err under "error".
func Error(err error) Field { return Field{key: zerolog.ErrorFieldName, kind: kindError, err: err} }

// Duration records d in whole milliseconds.
func Duration(key string, d time.Duration) Field {
	return Field{key: key, kind: kindInt, i: d.Milliseconds()}
}

// Strings joins values with ", ".
func Strings(key string, values []string) Field {
	return String(key, strings.Join(values, ", "))
}

package expr

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Builtin evaluates one of the fixed built-in scalar functions named in
// spec.md §3. args are already-evaluated double values; ok is false and v is
// NaN for an undefined function name (the caller turns that into an error,
// since UDFs beyond this fixed set are an explicit non-goal).
func Builtin(name string, args []float64) (v float64, ok bool) {
	switch strings.ToLower(name) {
	case "sin":
		return unary(args, math.Sin)
	case "cos":
		return unary(args, math.Cos)
	case "tan":
		return unary(args, math.Tan)
	case "log":
		return unary(args, math.Log)
	case "log10":
		return unary(args, math.Log10)
	case "exp":
		return unary(args, math.Exp)
	case "sqrt":
		return unary(args, math.Sqrt)
	case "abs":
		return unary(args, math.Abs)
	case "floor":
		return unary(args, math.Floor)
	case "ceil":
		return unary(args, math.Ceil)
	case "pow":
		if len(args) != 2 {
			return math.NaN(), false
		}
		return math.Pow(args[0], args[1]), true
	case "atan2":
		if len(args) != 2 {
			return math.NaN(), false
		}
		return math.Atan2(args[0], args[1]), true
	default:
		return math.NaN(), false
	}
}

func unary(args []float64, f func(float64) float64) (float64, bool) {
	if len(args) != 1 {
		return math.NaN(), false
	}
	return f(args[0]), true
}

// IsTimeFunc reports whether name is one of the four UNIX-time conversion
// functions, which operate on strings/format literals rather than plain
// doubles and are therefore handled separately from Builtin.
func IsTimeFunc(name string) bool {
	switch strings.ToLower(name) {
	case "from_unixtime_gmt", "from_unixtime_local", "to_unixtime_gmt", "to_unixtime_local":
		return true
	}
	return false
}

// EvalTimeFunc implements the four time-conversion built-ins.
// FROM_UNIXTIME_*(seconds, format) -> formatted string.
// TO_UNIXTIME_*(str, format) -> seconds since epoch, as a float64.
func EvalTimeFunc(name string, seconds float64, str, format string) (asString string, asNumber float64, err error) {
	loc := time.UTC
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "_local") {
		loc = time.Local
	}
	goFormat := strftimeToGo(format)

	switch {
	case strings.HasPrefix(lower, "from_unixtime"):
		t := time.Unix(int64(seconds), 0).In(loc)
		return t.Format(goFormat), 0, nil
	case strings.HasPrefix(lower, "to_unixtime"):
		t, perr := time.ParseInLocation(goFormat, str, loc)
		if perr != nil {
			return "", 0, fmt.Errorf("expr: cannot parse %q with format %q: %w", str, format, perr)
		}
		return "", float64(t.Unix()), nil
	default:
		return "", 0, fmt.Errorf("expr: unknown time function %q", name)
	}
}

// strftimeToGo translates a small, commonly-used subset of strftime
// directives into a Go reference-time layout. Unrecognised directives pass
// through literally, matching the original engine's permissive behaviour.
func strftimeToGo(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			b.WriteString("2006")
		case 'm':
			b.WriteString("01")
		case 'd':
			b.WriteString("02")
		case 'H':
			b.WriteString("15")
		case 'M':
			b.WriteString("04")
		case 'S':
			b.WriteString("05")
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

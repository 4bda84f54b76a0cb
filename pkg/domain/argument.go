package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Argument is a single resolved move argument.
// Supported concrete types are string, int, bool, ElementRef and PlayerRef.
type Argument = any

// ElementRef points at a board element by its identifier.
type ElementRef struct {
	ID string `json:"id"`
}

func (r ElementRef) String() string { return r.ID }

// PlayerRef points at a seated player by table position.
type PlayerRef struct {
	Position int `json:"position"`
}

func (r PlayerRef) String() string { return "player " + strconv.Itoa(r.Position) }

const (
	elementPrefix = "$el("
	playerPrefix  = "$p("
)

// SerializeArg converts an argument into its wire form.
// Element references become "$el(<id>)", players "$p(<position>)". Strings that
// already start with "$" are escaped with a second "$".
func SerializeArg(arg Argument) (any, error) {
	switch v := NormalizeArg(arg).(type) {
	case nil:
		return nil, nil
	case ElementRef:
		return elementPrefix + v.ID + ")", nil
	case PlayerRef:
		return playerPrefix + strconv.Itoa(v.Position) + ")", nil
	case string:
		if strings.HasPrefix(v, "$") {
			return "$" + v, nil
		}
		return v, nil
	case int, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedArgument, arg)
	}
}

// DeserializeArg converts a wire value back into an argument.
func DeserializeArg(raw any) (Argument, error) {
	switch v := NormalizeArg(raw).(type) {
	case nil:
		return nil, nil
	case string:
		switch {
		case strings.HasPrefix(v, "$$"):
			return v[1:], nil
		case strings.HasPrefix(v, elementPrefix) && strings.HasSuffix(v, ")"):
			return ElementRef{ID: v[len(elementPrefix) : len(v)-1]}, nil
		case strings.HasPrefix(v, playerPrefix) && strings.HasSuffix(v, ")"):
			n, err := strconv.Atoi(v[len(playerPrefix) : len(v)-1])
			if err != nil {
				return nil, fmt.Errorf("%w: bad player reference %q", ErrUnsupportedArgument, v)
			}
			return PlayerRef{Position: n}, nil
		}
		return v, nil
	case int, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedArgument, raw)
	}
}

// SerializeArgs converts a list of arguments into wire form.
func SerializeArgs(args []Argument) ([]any, error) {
	if args == nil {
		return nil, nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		v, err := SerializeArg(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// DeserializeArgs converts a list of wire values into arguments.
func DeserializeArgs(raw []any) ([]Argument, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]Argument, len(raw))
	for i, r := range raw {
		v, err := DeserializeArg(r)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// NormalizeArg maps numeric types to int when they hold an integral value.
// JSON decoding yields float64 or json.Number; the engine only works with ints.
func NormalizeArg(v any) any {
	switch n := v.(type) {
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case float32:
		return normalizeFloat(float64(n))
	case float64:
		return normalizeFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case *ElementRef:
		if n == nil {
			return nil
		}
		return *n
	case *PlayerRef:
		if n == nil {
			return nil
		}
		return *n
	}
	return v
}

func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

// ArgEqual reports whether two arguments denote the same value.
func ArgEqual(a, b Argument) bool {
	a, b = NormalizeArg(a), NormalizeArg(b)
	switch a.(type) {
	case nil, string, int, bool, float64, ElementRef, PlayerRef:
	default:
		return false
	}
	switch b.(type) {
	case nil, string, int, bool, float64, ElementRef, PlayerRef:
	default:
		return false
	}
	return a == b
}

// FormatArg renders an argument for prompts and logs.
func FormatArg(a Argument) string {
	switch v := NormalizeArg(a).(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

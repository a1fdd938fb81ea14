package script

import (
	"errors"
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/pmkol/fwdlist/pkg/slist"
)

// state holds the lists of one script run. It is owned by a single
// goroutine.
type state struct {
	lists map[string]*slist.List[int64]
}

func newState(init map[string][]int64) *state {
	st := &state{lists: make(map[string]*slist.List[int64], len(init))}
	for name, values := range init {
		st.lists[name] = slist.Of(values...)
	}
	return st
}

// list returns the named list, creating an empty one if needed.
func (st *state) list(name string) *slist.List[int64] {
	l, ok := st.lists[name]
	if !ok {
		l = slist.New[int64]()
		st.lists[name] = l
	}
	return l
}

func (st *state) lookup(name string) (*slist.List[int64], error) {
	l, ok := st.lists[name]
	if !ok {
		return nil, fmt.Errorf("list %s is not defined", name)
	}
	return l, nil
}

// params binds every list under its own name for expressions.
func (st *state) params() map[string]any {
	p := make(map[string]any, len(st.lists))
	for name, l := range st.lists {
		p[name] = l
	}
	return p
}

func (st *state) snapshot() map[string][]int64 {
	m := make(map[string][]int64, len(st.lists))
	for name, l := range st.lists {
		m[name] = l.Slice()
	}
	return m
}

var errArgs = errors.New("wrong number of arguments")

// exprFunctions are available in assert expressions. Numbers are float64,
// as everywhere in govaluate.
var exprFunctions = map[string]govaluate.ExpressionFunction{
	"size": func(args ...any) (any, error) {
		l, err := oneList(args)
		if err != nil {
			return nil, err
		}
		return float64(l.Len()), nil
	},
	"empty": func(args ...any) (any, error) {
		l, err := oneList(args)
		if err != nil {
			return nil, err
		}
		return l.IsEmpty(), nil
	},
	"front": func(args ...any) (any, error) {
		l, err := oneList(args)
		if err != nil {
			return nil, err
		}
		v, ok := l.Front()
		if !ok {
			return nil, errors.New("front of empty list")
		}
		return float64(v), nil
	},
	"at": func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, errArgs
		}
		l, err := asList(args[0])
		if err != nil {
			return nil, err
		}
		f, ok := args[1].(float64)
		if !ok || f < 0 || f != float64(int(f)) {
			return nil, fmt.Errorf("invalid index %v", args[1])
		}
		i := int(f)
		for v := range l.All() {
			if i == 0 {
				return float64(v), nil
			}
			i--
		}
		return nil, fmt.Errorf("index %d out of range, list has %d elements", int(f), l.Len())
	},
	"equal": func(args ...any) (any, error) {
		a, b, err := twoLists(args)
		if err != nil {
			return nil, err
		}
		return slist.Equal(a, b), nil
	},
	"less": func(args ...any) (any, error) {
		a, b, err := twoLists(args)
		if err != nil {
			return nil, err
		}
		return slist.Less(a, b), nil
	},
	"compare": func(args ...any) (any, error) {
		a, b, err := twoLists(args)
		if err != nil {
			return nil, err
		}
		return float64(slist.Compare(a, b)), nil
	},
}

func asList(v any) (*slist.List[int64], error) {
	l, ok := v.(*slist.List[int64])
	if !ok {
		return nil, fmt.Errorf("%v is not a list", v)
	}
	return l, nil
}

func oneList(args []any) (*slist.List[int64], error) {
	if len(args) != 1 {
		return nil, errArgs
	}
	return asList(args[0])
}

func twoLists(args []any) (a, b *slist.List[int64], err error) {
	if len(args) != 2 {
		return nil, nil, errArgs
	}
	if a, err = asList(args[0]); err != nil {
		return
	}
	b, err = asList(args[1])
	return
}

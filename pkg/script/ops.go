package script

import (
	"errors"
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/go-viper/mapstructure/v2"

	"github.com/pmkol/fwdlist/pkg/slist"
)

// execFunc runs a compiled step and returns a short description of what
// it did.
type execFunc func(st *state) (string, error)

type compileFunc func(args map[string]any) (execFunc, error)

var ops = make(map[string]compileFunc)

// validator is implemented by argument structs that need more than
// decoding to be checked.
type validator interface {
	validate() error
}

func register[A any](op string, fn func(st *state, a *A) (string, error)) {
	if _, dup := ops[op]; dup {
		panic(fmt.Sprintf("duplicate op %s", op))
	}
	ops[op] = func(args map[string]any) (execFunc, error) {
		a := new(A)
		if err := decodeArgs(args, a); err != nil {
			return nil, err
		}
		if v, ok := any(a).(validator); ok {
			if err := v.validate(); err != nil {
				return nil, err
			}
		}
		return func(st *state) (string, error) { return fn(st, a) }, nil
	}
}

func decodeArgs(args map[string]any, out any) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to init decoder: %w", err)
	}
	if err := d.Decode(args); err != nil {
		return fmt.Errorf("invalid args: %w", err)
	}
	return nil
}

type listArgs struct {
	List string `yaml:"list"`
}

func (a *listArgs) validate() error { return requireName("list", a.List) }

type newArgs struct {
	List   string  `yaml:"list"`
	Values []int64 `yaml:"values"`
}

func (a *newArgs) validate() error { return requireName("list", a.List) }

type valueArgs struct {
	List  string `yaml:"list"`
	Value int64  `yaml:"value"`
}

func (a *valueArgs) validate() error { return requireName("list", a.List) }

// Pos -1 is the before-begin position, k >= 0 is the k-th element.
// It is required.
type posArgs struct {
	List string `yaml:"list"`
	Pos  *int   `yaml:"pos"`
}

func (a *posArgs) validate() error { return validPos(a.List, a.Pos) }

type insertArgs struct {
	List  string `yaml:"list"`
	Pos   *int   `yaml:"pos"`
	Value int64  `yaml:"value"`
}

func (a *insertArgs) validate() error { return validPos(a.List, a.Pos) }

type pairArgs struct {
	List  string `yaml:"list"`
	Other string `yaml:"other"`
}

func (a *pairArgs) validate() error {
	return errors.Join(requireName("list", a.List), requireName("other", a.Other))
}

type copyArgs struct {
	List string `yaml:"list"`
	From string `yaml:"from"`
}

func (a *copyArgs) validate() error {
	return errors.Join(requireName("list", a.List), requireName("from", a.From))
}

type assertArgs struct {
	Expr string `yaml:"expr"`

	expr *govaluate.EvaluableExpression
}

func (a *assertArgs) validate() error {
	if len(a.Expr) == 0 {
		return errors.New("missing expr")
	}
	e, err := govaluate.NewEvaluableExpressionWithFunctions(a.Expr, exprFunctions)
	if err != nil {
		return fmt.Errorf("invalid expr %q: %w", a.Expr, err)
	}
	a.expr = e
	return nil
}

func requireName(key, v string) error {
	if len(v) == 0 {
		return fmt.Errorf("missing %s", key)
	}
	return nil
}

func validPos(list string, pos *int) error {
	if err := requireName("list", list); err != nil {
		return err
	}
	switch {
	case pos == nil:
		return errors.New("missing pos")
	case *pos < -1:
		return fmt.Errorf("invalid pos %d", *pos)
	}
	return nil
}

func init() {
	register("new", func(st *state, a *newArgs) (string, error) {
		l := st.list(a.List)
		l.Assign(slist.Of(a.Values...))
		return fmt.Sprintf("%s = %s", a.List, l), nil
	})

	register("push_front", func(st *state, a *valueArgs) (string, error) {
		l := st.list(a.List)
		l.PushFront(a.Value)
		return fmt.Sprintf("%s = %s", a.List, l), nil
	})

	register("pop_front", func(st *state, a *listArgs) (string, error) {
		l := st.list(a.List)
		v, ok := l.Front()
		if !ok {
			return "", fmt.Errorf("list %s is empty", a.List)
		}
		l.PopFront()
		return fmt.Sprintf("popped %d, %s = %s", v, a.List, l), nil
	})

	register("insert_after", func(st *state, a *insertArgs) (string, error) {
		l := st.list(a.List)
		pos, err := anchor(l, *a.Pos)
		if err != nil {
			return "", err
		}
		l.InsertAfter(pos, a.Value)
		return fmt.Sprintf("%s = %s", a.List, l), nil
	})

	register("erase_after", func(st *state, a *posArgs) (string, error) {
		l := st.list(a.List)
		pos, err := anchor(l, *a.Pos)
		if err != nil {
			return "", err
		}
		if next := pos; next.Next().IsEnd() {
			return "", fmt.Errorf("no element after pos %d in list %s", *a.Pos, a.List)
		}
		l.EraseAfter(pos)
		return fmt.Sprintf("%s = %s", a.List, l), nil
	})

	register("clear", func(st *state, a *listArgs) (string, error) {
		st.list(a.List).Clear()
		return fmt.Sprintf("%s = []", a.List), nil
	})

	register("swap", func(st *state, a *pairArgs) (string, error) {
		l, o := st.list(a.List), st.list(a.Other)
		slist.Swap(l, o)
		return fmt.Sprintf("%s = %s, %s = %s", a.List, l, a.Other, o), nil
	})

	register("copy", func(st *state, a *copyArgs) (string, error) {
		src, err := st.lookup(a.From)
		if err != nil {
			return "", err
		}
		l := st.list(a.List)
		l.Assign(src)
		return fmt.Sprintf("%s = %s", a.List, l), nil
	})

	register("compare", func(st *state, a *pairArgs) (string, error) {
		l, err := st.lookup(a.List)
		if err != nil {
			return "", err
		}
		o, err := st.lookup(a.Other)
		if err != nil {
			return "", err
		}
		rel := "=="
		switch c := slist.Compare(l, o); {
		case c < 0:
			rel = "<"
		case c > 0:
			rel = ">"
		}
		return fmt.Sprintf("%s %s %s", a.List, rel, a.Other), nil
	})

	register("print", func(st *state, a *listArgs) (string, error) {
		l, err := st.lookup(a.List)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s (size %d)", a.List, l, l.Len()), nil
	})

	register("assert", func(st *state, a *assertArgs) (string, error) {
		v, err := a.expr.Evaluate(st.params())
		if err != nil {
			return "", fmt.Errorf("failed to evaluate %q: %w", a.Expr, err)
		}
		ok, isBool := v.(bool)
		if !isBool {
			return "", fmt.Errorf("expr %q returned %v, not a bool", a.Expr, v)
		}
		if !ok {
			return "", fmt.Errorf("assertion %q failed", a.Expr)
		}
		return fmt.Sprintf("%s holds", a.Expr), nil
	})
}

// anchor resolves pos in l without tripping the list preconditions.
func anchor(l *slist.List[int64], pos int) (slist.Iterator[int64], error) {
	it := l.BeforeBegin()
	for i := -1; i < pos; i++ {
		if it.Next().IsEnd() {
			return it, fmt.Errorf("pos %d out of range, list has %d elements", pos, l.Len())
		}
	}
	return it, nil
}

package track_test

import (
	"fmt"

	"github.com/jonwraymond/callstats/track"
)

func ExampleNew() {
	// Wrap f(x, y=10), watching how often y receives 10 or 20.
	f := func(args []any, kwargs map[string]any) (any, error) {
		return nil, nil
	}

	w, err := track.New(f, []track.ParamSpec{
		track.Positional(),
		track.Keyword("y", 10, 20),
	})
	if err != nil {
		panic(err)
	}

	_, _ = w.Call([]any{1}, nil)
	_, _ = w.Call([]any{1}, map[string]any{"y": 20})
	_, _ = w.Call([]any{1}, map[string]any{"y": 99})

	total, errs, invalid := w.Counts()
	fmt.Println("counts:", total, errs, invalid)

	for _, p := range w.ParamStats() {
		if p.Name == "" {
			fmt.Println("positional supplied:", p.Supplied)
			continue
		}
		fmt.Printf("%s supplied: %d watched: %v\n", p.Name, p.Supplied, p.WatchedCounts)
	}
	// Output:
	// counts: 3 0 0
	// positional supplied: 3
	// y supplied: 2 watched: [0 1]
}

func ExampleWrapper_SetPositionalLimit() {
	f := func(args []any, kwargs map[string]any) (any, error) {
		return len(args), nil
	}

	w, _ := track.New(f, []track.ParamSpec{
		track.Positional(),
		track.Keyword("mode"),
	})

	// Enforce keyword-only semantics for "mode".
	_ = w.SetPositionalLimit(1)

	// The second positional is past the limit: counted as invalid, still
	// forwarded.
	res, _ := w.Call([]any{1, "fast"}, nil)
	_, _, invalid := w.Counts()
	fmt.Println("forwarded args:", res)
	fmt.Println("invalid calls:", invalid)
	// Output:
	// forwarded args: 2
	// invalid calls: 1
}

package track

// ParamSpec describes one parameter slot to track. A slot with an empty Name
// is positional-only and can never be matched by keyword. Watch is the
// optional ordered set of values counted individually; all other values for
// the slot are tallied only in the aggregate supplied count.
//
// The spec sequence passed to New must list positional-only slots before
// keyword slots, mirroring call-site declaration order.
type ParamSpec struct {
	Name  string
	Watch []any
}

// Positional returns a positional-only spec, optionally watching the given
// values.
func Positional(watch ...any) ParamSpec {
	return ParamSpec{Watch: watch}
}

// Keyword returns a keyword spec for name, optionally watching the given
// values.
func Keyword(name string, watch ...any) ParamSpec {
	return ParamSpec{Name: name, Watch: watch}
}

func validateSpecs(specs []ParamSpec) error {
	seenKeyword := false
	for _, s := range specs {
		if s.Name == "" {
			if seenKeyword {
				return ErrSpecOrder
			}
			continue
		}
		seenKeyword = true
	}
	return nil
}

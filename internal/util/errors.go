package util

import "strings"

// ErrPublic is an error whose message can be shown as-is to the user that
// triggered it.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}

// Is matches any ErrPublic, use errors.Is(err, ErrPublic("")).
func (e ErrPublic) Is(v error) bool {
	_, ok := v.(ErrPublic)
	return ok
}

// ConcatErrors joins the messages of all non-nil errors, it returns nil if
// there is nothing to join. The result still matches every joined error with
// errors.Is and errors.As.
func ConcatErrors(errs []error) error {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return concatErrors(filtered)
}

type concatErrors []error

func (e concatErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}

	return strings.Join(msgs, "; ")
}

func (e concatErrors) Unwrap() []error {
	return e
}

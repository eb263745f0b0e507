package listview

import "strconv"

// Option is a dropdown entry. Synthetic marks a value injected by
// MergeCurrent rather than returned by the server.
type Option struct {
	ID        int64
	Label     string
	Synthetic bool
}

// MergeCurrent guarantees the currently selected record appears in the
// option list. Edit forms load active options only; a record referencing a
// deactivated or filtered-out parent would otherwise render an empty
// select and silently lose the value on save.
func MergeCurrent(options []Option, id int64, label string) []Option {
	if id == 0 {
		return options
	}
	for _, option := range options {
		if option.ID == id {
			return options
		}
	}
	if label == "" {
		label = "#" + strconv.FormatInt(id, 10)
	}
	merged := make([]Option, 0, len(options)+1)
	merged = append(merged, Option{ID: id, Label: label, Synthetic: true})
	return append(merged, options...)
}

// SlicePage cuts one page out of an already-loaded slice, for screens that
// fetch everything once and page locally. Out-of-range pages return an
// empty slice rather than panicking.
func SlicePage[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// OptimisticToggle applies a flag flip locally before the server answers.
// apply receives the displayed value: the optimistic flip first, then
// either the server's answer or, on failure, the original value back.
func OptimisticToggle(current bool, apply func(bool), mutate func() (bool, error)) error {
	apply(!current)
	value, err := mutate()
	if err != nil {
		apply(current)
		return err
	}
	apply(value)
	return nil
}

package paginator

import (
	"fmt"
	"strings"
)

// MergeFunc folds a freshly fetched page into the list accumulated so far.
// It must be pure: no knowledge of sessions, cursors or fetch state.
type MergeFunc[T any] func(previous, incoming []T) []T

// Concat appends incoming to previous. Use it when the transport guarantees
// disjoint pages.
func Concat[T any]() MergeFunc[T] {
	return func(previous, incoming []T) []T {
		out := make([]T, 0, len(previous)+len(incoming))
		out = append(out, previous...)
		return append(out, incoming...)
	}
}

// DistinctConcat appends the incoming items whose key is not already present,
// keeping the order of previous and the relative order of the new items.
// Use it when page boundaries can overlap.
func DistinctConcat[T any, K comparable](key func(T) K) MergeFunc[T] {
	return func(previous, incoming []T) []T {
		seen := make(map[K]struct{}, len(previous)+len(incoming))
		out := make([]T, 0, len(previous)+len(incoming))
		for _, item := range previous {
			seen[key(item)] = struct{}{}
			out = append(out, item)
		}
		for _, item := range incoming {
			k := key(item)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
		return out
	}
}

// DistinctComparable is DistinctConcat keyed by the item itself.
func DistinctComparable[T comparable]() MergeFunc[T] {
	return DistinctConcat(func(item T) T { return item })
}

// MergePolicy names a merge strategy in configuration files and flags.
type MergePolicy string

// Known merge policies.
const (
	MergeConcat   MergePolicy = "concat"
	MergeDistinct MergePolicy = "distinct"
)

// ParseMergePolicy parses s case-insensitively. An empty string selects concat.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MergeConcat:
		return MergeConcat, nil
	case MergeDistinct, "distinct_concat", "distinctconcat":
		return MergeDistinct, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownMergePolicy, s, MergeConcat, MergeDistinct)
	}
}

// Resolve turns the policy into a MergeFunc. key identifies items for the
// distinct policy and is ignored by concat.
func Resolve[T any, K comparable](policy MergePolicy, key func(T) K) (MergeFunc[T], error) {
	switch policy {
	case "", MergeConcat:
		return Concat[T](), nil
	case MergeDistinct:
		if key == nil {
			return nil, fmt.Errorf("%w: distinct merge needs an item key", ErrUnknownMergePolicy)
		}
		return DistinctConcat(key), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMergePolicy, policy)
	}
}

// Package groups splits samples into two comparison groups according to the
// type label each sample was declared with.
package groups

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/carbocation/netdiff"
	"go.uber.org/zap"
)

// ErrUnrecognizedTypeLabel is matched by every UnrecognizedTypeLabelError.
var ErrUnrecognizedTypeLabel = errors.New("unrecognized type label")

// UnrecognizedTypeLabelError describes a sample whose label matched neither
// pattern. It is never fatal; Assign records it in Diagnostics.
type UnrecognizedTypeLabelError struct {
	Sample string
	Label  string
}

func (e UnrecognizedTypeLabelError) Error() string {
	return fmt.Sprintf("sample %q: type label %q matches neither group", e.Sample, e.Label)
}

func (e UnrecognizedTypeLabelError) Is(target error) bool { return target == ErrUnrecognizedTypeLabel }

// Diagnostics collects the rows Assign skipped.
type Diagnostics struct {
	Unrecognized []UnrecognizedTypeLabelError
}

// Skipped is the number of samples left out of both groups.
func (d Diagnostics) Skipped() int { return len(d.Unrecognized) }

// Assignment maps each group pattern to the ids of its samples, in the order
// the samples were first seen.
type Assignment struct {
	Type1, Type2 string
	groups       map[string][]string
}

// Samples returns the ids assigned to pattern, which must be Type1 or Type2.
func (a Assignment) Samples(pattern string) []string {
	return append([]string(nil), a.groups[pattern]...)
}

// Map returns the assignment as {type1: ids, type2: ids}.
func (a Assignment) Map() map[string][]string {
	return map[string][]string{
		a.Type1: a.Samples(a.Type1),
		a.Type2: a.Samples(a.Type2),
	}
}

// Assign classifies each sample. A label belongs to type1 if type1 matches
// anywhere in it; otherwise it belongs to type2 if type2 matches at its start.
// type1 is always tried first. Labels matching neither are logged, counted in
// Diagnostics and dropped.
//
// If a sample id occurs more than once, its last label is used and it keeps the
// position of its first occurrence.
func Assign(rows []netdiff.NodeType, type1, type2 string, logger *zap.Logger) (Assignment, Diagnostics, error) {
	var diag Diagnostics
	if logger == nil {
		logger = zap.NewNop()
	}

	search, err := regexp.Compile(type1)
	if err != nil {
		return Assignment{}, diag, fmt.Errorf("Assign: type1 pattern: %w", err)
	}
	prefix, err := regexp.Compile(`^(?:` + type2 + `)`)
	if err != nil {
		return Assignment{}, diag, fmt.Errorf("Assign: type2 pattern: %w", err)
	}

	order := make([]string, 0, len(rows))
	labels := make(map[string]string, len(rows))
	for _, row := range rows {
		if _, seen := labels[row.Sample]; !seen {
			order = append(order, row.Sample)
		}
		labels[row.Sample] = row.Type
	}

	out := Assignment{
		Type1: type1,
		Type2: type2,
		groups: map[string][]string{
			type1: {},
			type2: {},
		},
	}

	for _, sample := range order {
		label := labels[sample]
		switch {
		case search.MatchString(label):
			out.groups[type1] = append(out.groups[type1], sample)
		case prefix.MatchString(label):
			out.groups[type2] = append(out.groups[type2], sample)
		default:
			skipped := UnrecognizedTypeLabelError{Sample: sample, Label: label}
			diag.Unrecognized = append(diag.Unrecognized, skipped)
			logger.Warn("Unexpected value in the type column of the node type file",
				zap.String("sample", sample),
				zap.String("label", label))
		}
	}

	return out, diag, nil
}

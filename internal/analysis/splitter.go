package analysis

import (
	"strings"

	"effectbin/domain/effectsize"
	"effectbin/internal/errors"
)

// SplitGroups partitions the input table into per-group outcome sequences.
// Missing outcome values are retained (later stages exclude them per
// operation); rows with a missing group label are dropped entirely. Group
// enumeration order is first appearance in the table, which fixes the order
// of every downstream pair and output row.
func SplitGroups(table effectsize.Table) (effectsize.GroupSplit, error) {
	split := effectsize.GroupSplit{
		Groups: make([]string, 0, 4),
		Values: make(map[string][]float64),
	}

	for _, obs := range table {
		label := strings.TrimSpace(obs.Group)
		if label == "" {
			continue
		}
		if _, seen := split.Values[label]; !seen {
			split.Groups = append(split.Groups, label)
			split.Values[label] = nil
		}
		split.Values[label] = append(split.Values[label], obs.Outcome)
	}

	if len(split.Groups) < 2 {
		return effectsize.GroupSplit{}, errors.Newf(errors.CodeMalformedInput,
			"need at least 2 distinct group labels, got %d", len(split.Groups))
	}

	return split, nil
}

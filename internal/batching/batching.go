// Package batching groups the files of a dataset into jobs by cumulative event count.
package batching

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
)

// Batch is an ordered, non-empty run of consecutive files of one dataset.
type Batch struct {
	// 1-based position of the batch within its dataset. Used to name job files.
	Index int
	Files []string
	// Sum of the event counts of Files.
	Events int
}

// Partition walks files in order and closes a batch as soon as its event count reaches threshold,
// or at the last file. The split is greedy: no attempt is made to balance batch sizes. Every batch
// except possibly the last therefore holds at least threshold events. No files yields no batches.
//
// files and events are parallel slices and must have equal length.
func Partition(files []string, events []int, threshold int) ([]Batch, error) {
	if len(files) != len(events) {
		return nil, errors.WithStack(&condorerrors.ErrInvalidArgument{
			Name:    "ns",
			Value:   fmt.Sprintf("%d entries", len(events)),
			Message: fmt.Sprintf("expected one event count per file (%d files)", len(files)),
		})
	}
	if threshold <= 0 {
		return nil, errors.WithStack(&condorerrors.ErrInvalidArgument{
			Name:    "eventThreshold",
			Value:   fmt.Sprintf("%d", threshold),
			Message: "must be positive",
		})
	}

	batches := make([]Batch, 0)
	current := Batch{Index: 1}
	for i, file := range files {
		current.Files = append(current.Files, file)
		current.Events += events[i]
		if current.Events >= threshold || i == len(files)-1 {
			batches = append(batches, current)
			current = Batch{Index: len(batches) + 1}
		}
	}
	return batches, nil
}

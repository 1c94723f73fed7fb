// internal/engine/chunker.go
package engine

import "github.com/tablemate-app/tablemate/internal/models"

// Chunker splits a day bucket's ordered user list into groups for the
// weekend flow. Size is the nominal chunk size; Min and Max are the shared
// capacity policy both flows honor.
//
// Tail policy: a final chunk smaller than Min is merged into its predecessor
// when the merged size stays within Max, otherwise members are moved from
// the predecessor until the final chunk reaches Min. Either way no group is
// ever emitted below Min or above Max, and the sum of chunk sizes always
// equals the bucket size.
type Chunker struct {
	Size int
	Min  int
	Max  int
}

// Chunk partitions bucket into groups. Buckets smaller than Min are entirely
// waitlisted: nil is returned and no group is attempted.
func (c *Chunker) Chunk(bucket []models.User) [][]models.User {
	if len(bucket) < c.Min {
		return nil
	}

	var chunks [][]models.User
	for start := 0; start < len(bucket); start += c.Size {
		end := start + c.Size
		if end > len(bucket) {
			end = len(bucket)
		}
		chunks = append(chunks, bucket[start:end:end])
	}

	last := len(chunks) - 1
	if last < 1 || len(chunks[last]) >= c.Min {
		return chunks
	}

	prev, tail := chunks[last-1], chunks[last]
	if len(prev)+len(tail) <= c.Max {
		chunks[last-1] = append(prev, tail...)
		return chunks[:last]
	}
	// Rebalance: move members off the predecessor until the tail is viable.
	for len(tail) < c.Min {
		tail = append(tail, prev[len(prev)-1])
		prev = prev[:len(prev)-1]
	}
	chunks[last-1], chunks[last] = prev, tail
	return chunks
}

package domain

import (
	m "gollate.dev/pkg/gollate/internal/model"
)

// Segment derives variation segments from a table without modifying it.
//
// With merge=false every column is its own segment. With merge=true maximal runs
// of columns with the same variation status are merged, so a boundary exists
// exactly where that status changes. A column varies when its present tokens
// disagree on the normalized form or when any witness has a gap in it.
func Segment(table m.Table, merge bool) []m.Segment {
	segments := make([]m.Segment, 0, len(table.Columns))

	for _, col := range table.Columns {
		varies := col.Varies(table.Witnesses)

		if merge && len(segments) > 0 && segments[len(segments)-1].Varies == varies {
			last := &segments[len(segments)-1]
			last.Columns = append(last.Columns, col)

			continue
		}

		segments = append(segments, m.Segment{Columns: []m.Column{col}, Varies: varies})
	}

	return segments
}

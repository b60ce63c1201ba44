package docpreview

// Plan splits records into pages under policy. Records keep their order and
// every record lands on exactly one page. Plan never fails: an empty list
// gives one empty page, and a zero policy puts everything on one page.
//
// Page record slices share the backing array of records but are capped, so
// appending to one page never overwrites the next.
func Plan(records []Record, policy CapacityPolicy) []Page {
	sizes := policy.sizes(len(records))
	pages := make([]Page, len(sizes))

	start := 0
	for i, n := range sizes {
		end := start + n
		pages[i] = Page{
			Index:   i,
			IsFirst: i == 0,
			IsLast:  i == len(sizes)-1,
			Records: records[start:end:end],
		}
		start = end
	}
	return pages
}

// PageSizes returns the record count per page without slicing records.
func PageSizes(total int, policy CapacityPolicy) []int {
	return policy.sizes(total)
}

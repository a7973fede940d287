package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CleanOrderings drops orderings on fields that are not in allowed (json name -> storage name)
// and translates the remaining ones to their storage names.
func CleanOrderings(orderings []DBOrdering, allowed map[string]string) []DBOrdering {
	cleaned := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if field, ok := allowed[ord.Field]; ok {
			cleaned = append(cleaned, DBOrdering{Field: field, Ascending: ord.Ascending})
		}
	}
	return cleaned
}

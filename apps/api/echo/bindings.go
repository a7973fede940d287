package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pragya-git-bug/aibackend/core"
)

const orderingParam = "ordering"

// bindOrderings reads ?ordering=name,-createdAt (the param may repeat).
// A leading "-" sorts descending. Fields missing from allowed are dropped,
// as are repeats of a field already ordered on.
func bindOrderings(ctx echo.Context, allowed map[string]string) []core.DBOrdering {
	var orderings []core.DBOrdering
	seen := map[string]bool{}
	for _, val := range ctx.QueryParams()[orderingParam] {
		for _, field := range strings.Split(val, ",") {
			field = strings.TrimSpace(field)
			descending := strings.HasPrefix(field, "-")
			field = strings.TrimPrefix(field, "-")
			if _, ok := allowed[field]; !ok || seen[field] {
				continue
			}
			seen[field] = true
			orderings = append(orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
	return orderings
}

package inmemdb

import (
	"sort"
	"sync"
	"time"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/quiz"
	"github.com/pragya-git-bug/aibackend/core/user"
)

type (
	// DB keeps every table in memory, keyed by entity code. Used by tests and the "memory" engine.
	DB struct {
		user       *userTable
		assignment *assignmentTable
		quiz       *quizTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
	}

	quizTable struct {
		sync.RWMutex
		table map[string]*quiz.Quiz
	}
)

func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		quiz:       &quizTable{table: make(map[string]*quiz.Quiz)},
	}
}

// fieldGetter returns the value of a storage field: a string or a time.Time.
type fieldGetter func(i int, field string) interface{}

// sortByOrderings sorts n items with orderings, falling back on createdAt (ascending).
func sortByOrderings(n int, swap func(i, j int), get fieldGetter, orderings []core.DBOrdering) {
	orderings = append(append(make([]core.DBOrdering, 0, len(orderings)+1), orderings...),
		core.DBOrdering{Field: "createdAt", Ascending: true})
	sort.Stable(sorter{n: n, swap: swap, less: func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(get(i, ord.Field), get(j, ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	}})
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case time.Time:
		bv, _ := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
	}
	return 0
}

type sorter struct {
	n    int
	swap func(i, j int)
	less func(i, j int) bool
}

func (s sorter) Len() int           { return s.n }
func (s sorter) Swap(i, j int)      { s.swap(i, j) }
func (s sorter) Less(i, j int) bool { return s.less(i, j) }

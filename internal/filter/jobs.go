package filter

import (
	"fmt"
	"time"

	"github.com/justsurfingit/career-tracker/internal/models"
)

type JobSort string

const (
	JobSortDateAdded JobSort = "date_added"
	JobSortDeadline  JobSort = "deadline"
	JobSortSalary    JobSort = "salary"
	JobSortCompany   JobSort = "company"
)

// ParseJobSort maps a query value to a sort key; empty means date_added.
func ParseJobSort(s string) (JobSort, error) {
	switch JobSort(s) {
	case "":
		return JobSortDateAdded, nil
	case JobSortDateAdded, JobSortDeadline, JobSortSalary, JobSortCompany:
		return JobSort(s), nil
	}
	return "", fmt.Errorf("unknown job sort %q", s)
}

// JobFilter is the complete filter state of the jobs list.
type JobFilter struct {
	Search   string
	Industry string
	JobType  string
	Status   string

	SalaryMin *int64
	SalaryMax *int64

	DeadlineFrom *time.Time
	DeadlineTo   *time.Time

	Sort JobSort
}

// Key identifies the filter state by value, for memoization.
func (f JobFilter) Key() string {
	return fmt.Sprintf("%q|%q|%q|%q|%s|%s|%s|%s|%s",
		f.Search, f.Industry, f.JobType, f.Status,
		optInt(f.SalaryMin), optInt(f.SalaryMax),
		optTime(f.DeadlineFrom), optTime(f.DeadlineTo), f.Sort)
}

// Jobs runs the jobs pipeline.
func Jobs(jobs []models.Job, f JobFilter) []models.Job {
	return Apply(jobs, f.predicates(), jobComparator(f.Sort))
}

func (f JobFilter) predicates() []Predicate[models.Job] {
	var preds []Predicate[models.Job]

	if f.Search != "" {
		term := f.Search
		preds = append(preds, func(j models.Job) bool {
			return ContainsFold(term, j.Title, j.CompanyName(), j.Description, j.Location)
		})
	}
	if Active(f.Industry) {
		preds = append(preds, categorical(f.Industry, func(j models.Job) string { return j.Industry }))
	}
	if Active(f.JobType) {
		preds = append(preds, categorical(f.JobType, func(j models.Job) string { return j.JobType }))
	}
	if Active(f.Status) {
		preds = append(preds, categorical(f.Status, func(j models.Job) string { return j.Status }))
	}

	if f.SalaryMin != nil {
		lo := *f.SalaryMin
		preds = append(preds, func(j models.Job) bool {
			v, ok := SalaryHigh(j)
			return ok && v >= lo
		})
	}
	if f.SalaryMax != nil {
		hi := *f.SalaryMax
		preds = append(preds, func(j models.Job) bool {
			v, ok := SalaryLow(j)
			return ok && v <= hi
		})
	}

	if f.DeadlineFrom != nil {
		from := *f.DeadlineFrom
		preds = append(preds, func(j models.Job) bool {
			return j.Deadline != nil && !j.Deadline.Before(from)
		})
	}
	if f.DeadlineTo != nil {
		to := *f.DeadlineTo
		preds = append(preds, func(j models.Job) bool {
			return j.Deadline != nil && !j.Deadline.After(to)
		})
	}
	return preds
}

func jobComparator(key JobSort) Compare[models.Job] {
	switch key {
	case JobSortDeadline:
		return func(a, b models.Job) int {
			switch {
			case a.Deadline == nil && b.Deadline == nil:
				return 0
			case a.Deadline == nil:
				return 1
			case b.Deadline == nil:
				return -1
			}
			return a.Deadline.Compare(*b.Deadline)
		}
	case JobSortSalary:
		return func(a, b models.Job) int {
			av, aok := SalaryHigh(a)
			bv, bok := SalaryHigh(b)
			switch {
			case !aok && !bok:
				return 0
			case !aok:
				return 1
			case !bok:
				return -1
			case av > bv:
				return -1
			case av < bv:
				return 1
			}
			return 0
		}
	case JobSortCompany:
		return func(a, b models.Job) int {
			return compareFold(a.CompanyName(), b.CompanyName())
		}
	default:
		return func(a, b models.Job) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func optTime(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.UTC().Format(time.RFC3339Nano)
}

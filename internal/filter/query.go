package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
)

const dateLayout = "2006-01-02"

// JobFilterFromQuery parses list query parameters into a JobFilter.
func JobFilterFromQuery(q url.Values) (JobFilter, error) {
	verr := apperrors.NewValidationError()
	f := JobFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Industry: q.Get("industry"),
		JobType:  q.Get("jobType"),
		Status:   q.Get("status"),
	}

	f.SalaryMin = salaryParam(q, "salaryMin", verr)
	f.SalaryMax = salaryParam(q, "salaryMax", verr)
	f.DeadlineFrom = dateParam(q, "deadlineFrom", false, verr)
	f.DeadlineTo = dateParam(q, "deadlineTo", true, verr)

	sort, err := ParseJobSort(q.Get("sort"))
	if err != nil {
		verr.Add("sort", err.Error())
	}
	f.Sort = sort
	return f, verr.OrNil()
}

// ContactFilterFromQuery parses list query parameters into a ContactFilter.
func ContactFilterFromQuery(q url.Values) (ContactFilter, error) {
	verr := apperrors.NewValidationError()
	f := ContactFilter{
		Search:           strings.TrimSpace(q.Get("search")),
		RelationshipType: q.Get("relationshipType"),
		Industry:         q.Get("industry"),
		Category:         q.Get("category"),
		Tag:              q.Get("tag"),
	}
	f.StrengthMin = intParam(q, "strengthMin", verr)
	f.StrengthMax = intParam(q, "strengthMax", verr)

	sort, err := ParseContactSort(q.Get("sort"))
	if err != nil {
		verr.Add("sort", err.Error())
	}
	f.Sort = sort
	return f, verr.OrNil()
}

// Values encodes a JobFilter back into query parameters.
func (f JobFilter) Values() url.Values {
	q := url.Values{}
	setIf(q, "search", f.Search)
	setIf(q, "industry", f.Industry)
	setIf(q, "jobType", f.JobType)
	setIf(q, "status", f.Status)
	if f.SalaryMin != nil {
		q.Set("salaryMin", strconv.FormatInt(*f.SalaryMin, 10))
	}
	if f.SalaryMax != nil {
		q.Set("salaryMax", strconv.FormatInt(*f.SalaryMax, 10))
	}
	if f.DeadlineFrom != nil {
		q.Set("deadlineFrom", f.DeadlineFrom.Format(time.RFC3339Nano))
	}
	if f.DeadlineTo != nil {
		q.Set("deadlineTo", f.DeadlineTo.Format(time.RFC3339Nano))
	}
	setIf(q, "sort", string(f.Sort))
	return q
}

// Values encodes a ContactFilter back into query parameters.
func (f ContactFilter) Values() url.Values {
	q := url.Values{}
	setIf(q, "search", f.Search)
	setIf(q, "relationshipType", f.RelationshipType)
	setIf(q, "industry", f.Industry)
	setIf(q, "category", f.Category)
	setIf(q, "tag", f.Tag)
	if f.StrengthMin != nil {
		q.Set("strengthMin", strconv.Itoa(*f.StrengthMin))
	}
	if f.StrengthMax != nil {
		q.Set("strengthMax", strconv.Itoa(*f.StrengthMax))
	}
	setIf(q, "sort", string(f.Sort))
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func salaryParam(q url.Values, key string, verr *apperrors.ValidationError) *int64 {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	v, ok := ParseSalary(raw)
	if !ok {
		verr.Add(key, "must be a number")
		return nil
	}
	return &v
}

func intParam(q url.Values, key string, verr *apperrors.ValidationError) *int {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(key, "must be an integer")
		return nil
	}
	return &v
}

// dateParam accepts RFC 3339 or a bare date. A bare upper bound covers the
// whole day.
func dateParam(q url.Values, key string, endOfDay bool, verr *apperrors.ValidationError) *time.Time {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		verr.Add(key, "must be a date (YYYY-MM-DD)")
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}

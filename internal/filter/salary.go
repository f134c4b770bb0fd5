package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/justsurfingit/career-tracker/internal/models"
)

var salaryNoise = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", "_", "", " ", "")

// ParseSalary reads salary strings as users type them: "$90,000", "120k",
// "85000". The second result is false for empty or unparseable input.
func ParseSalary(s string) (int64, bool) {
	s = salaryNoise.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	mult := 1.0
	if last := s[len(s)-1]; last == 'k' || last == 'K' {
		mult = 1000
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which no int64 holds.
	if v *= mult; v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}

// SalaryHigh is the job's max salary, falling back to min.
func SalaryHigh(j models.Job) (int64, bool) {
	if v, ok := ParseSalary(j.SalaryMax); ok {
		return v, true
	}
	return ParseSalary(j.SalaryMin)
}

// SalaryLow is the job's min salary, falling back to max.
func SalaryLow(j models.Job) (int64, bool) {
	if v, ok := ParseSalary(j.SalaryMin); ok {
		return v, true
	}
	return ParseSalary(j.SalaryMax)
}

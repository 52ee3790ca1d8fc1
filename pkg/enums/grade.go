package enums

import "fmt"

// Grade is the quality grade a customer can request for produce.
type Grade string

const (
	GradePremium Grade = "Premium"
	GradeA       Grade = "A Grade"
	GradeB       Grade = "B Grade"
	GradeC       Grade = "C Grade"
)

var validGrades = []Grade{
	GradePremium,
	GradeA,
	GradeB,
	GradeC,
}

// IsValid reports whether the value matches the canonical grade enum.
func (g Grade) IsValid() bool {
	for _, candidate := range validGrades {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGrade converts the raw string to Grade.
func ParseGrade(value string) (Grade, error) {
	for _, candidate := range validGrades {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grade %q", value)
}

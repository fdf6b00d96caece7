package core

import "net/http"

// Problem captures the information returned in an error response.
type Problem struct {
	Status int
	Title  string
	Detail string
	Extras map[string]any
}

// NormalizeProblem ensures the provided problem includes canonical defaults.
func NormalizeProblem(problem *Problem) *Problem {
	if problem == nil {
		problem = &Problem{}
	}
	if problem.Status == 0 {
		problem.Status = http.StatusInternalServerError
	}
	if problem.Title == "" {
		problem.Title = http.StatusText(problem.Status)
	}
	return problem
}

// BuildProblemBody assembles the serialized representation of the problem.
// Clients only rely on "error"; extras carry operator-facing detail.
func BuildProblemBody(problem *Problem) map[string]any {
	body := map[string]any{"error": problem.Title}
	if problem.Detail != "" {
		body["details"] = problem.Detail
	}
	for key, value := range problem.Extras {
		if isReservedProblemKey(key) {
			continue
		}
		body[key] = value
	}
	return body
}

func isReservedProblemKey(key string) bool {
	switch key {
	case "error", "details":
		return true
	default:
		return false
	}
}

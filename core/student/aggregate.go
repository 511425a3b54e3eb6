package student

import (
	"math"
	"sort"
	"strings"
)

// UnassignedClass is the bucket for records with no class label.
const UnassignedClass = "Unassigned"

type GradeBuckets struct {
	A int `json:"A"` // average >= 85
	B int `json:"B"` // 70 <= average < 85
	C int `json:"C"` // 50 <= average < 70
	D int `json:"D"` // average < 50
}

// ClassSummary is a per-class aggregation over the canonical record
// collection.
type ClassSummary struct {
	Class    string       `json:"class"`
	Count    int          `json:"count"`
	Graded   int          `json:"graded"`
	Average  float64      `json:"average"` // mean of per-student means, one decimal
	Subjects int          `json:"subjects"`
	Buckets  GradeBuckets `json:"buckets"`
}

// Summarize groups the collection by class label and computes, per group, the
// record count, the one-decimal mean of per-record averages, the number of
// distinct subject names and the grade-letter distribution of per-record
// averages. Records with an empty grade map have an undefined average and are
// excluded from the group mean and the buckets; they still count toward the
// group size.
func Summarize(students []Student) []ClassSummary {
	groups := make(map[string][]Student)
	for _, s := range students {
		label := s.Class
		if strings.TrimSpace(label) == "" {
			label = UnassignedClass
		}
		groups[label] = append(groups[label], s)
	}

	summaries := make([]ClassSummary, 0, len(groups))
	for label, members := range groups {
		sum := ClassSummary{Class: label, Count: len(members)}

		subjects := make(map[string]bool)
		var total float64
		for _, s := range members {
			// a subject is anything listed or graded, same as the query
			// interpreter's vocabulary
			for _, sub := range s.Subjects {
				subjects[strings.ToLower(strings.TrimSpace(sub))] = true
			}
			for sub := range s.Grades {
				subjects[strings.ToLower(strings.TrimSpace(sub))] = true
			}
			avg, ok := s.Average()
			if !ok {
				continue
			}
			sum.Graded++
			total += avg
			switch {
			case avg >= 85:
				sum.Buckets.A++
			case avg >= 70:
				sum.Buckets.B++
			case avg >= 50:
				sum.Buckets.C++
			default:
				sum.Buckets.D++
			}
		}
		delete(subjects, "")
		sum.Subjects = len(subjects)
		if sum.Graded > 0 {
			sum.Average = roundTo1(total / float64(sum.Graded))
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Class < summaries[j].Class })
	return summaries
}

func roundTo1(x float64) float64 {
	return math.Round(x*10) / 10
}

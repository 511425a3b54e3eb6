package student

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tmusoni/darasa/core"
)

// The free-text query grammar is an explicit ordered list of matcher rules,
// each consuming tokens and contributing one operation. The order is a fixed
// priority: limit, threshold, class, subject, sort, name/leftover; the
// remembered limit is applied last. The sort rule runs before the leftover
// rule so that "sort by name asc" is not mistaken for a name filter. New
// phrasings are added by appending a rule.

// QueryResult is the outcome of interpreting a free-text query against a
// collection: the filtered/sorted/limited subsequence plus a human-readable
// account of the operations that were applied.
type QueryResult struct {
	Students []Student `json:"students"`
	Applied  []string  `json:"applied"`
}

type Interpreter struct {
	collator *collate.Collator
}

func NewInterpreter() *Interpreter {
	return &Interpreter{
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

type token struct {
	text     string
	lower    string
	consumed bool
}

type parseState struct {
	tokens   []token
	vocab    map[string]string // lowered subject -> display name, from the whole collection
	limit    int
	sortKey  string
	sortAsc  bool
	hasSort  bool
	filters  []filterOp
	applied  []string
}

type filterOp struct {
	describe string
	keep     func(Student) bool
}

type rule struct {
	name  string
	match func(st *parseState)
}

// Interpret parses a free-text query string and executes it against the given
// collection. It never fails on arbitrary input: unrecognized text either
// contributes a generic substring-match filter or is ignored. Re-running the
// same query against an unchanged collection yields an identical ordered
// result.
func (it *Interpreter) Interpret(students []Student, query string) QueryResult {
	st := &parseState{
		tokens: tokenize(query),
		vocab:  subjectVocabulary(students),
	}

	for _, r := range it.rules() {
		r.match(st)
	}

	result := make([]Student, len(students))
	copy(result, students)

	for _, f := range st.filters {
		var kept []Student
		for _, s := range result {
			if f.keep(s) {
				kept = append(kept, s)
			}
		}
		result = kept
		st.applied = append(st.applied, f.describe)
	}

	if st.hasSort {
		it.sortStudents(result, st.sortKey, st.sortAsc)
		dir := "desc"
		if st.sortAsc {
			dir = "asc"
		}
		st.applied = append(st.applied, fmt.Sprintf("sort by %s %s", st.sortKey, dir))
	}

	if st.limit > 0 && st.limit < len(result) {
		result = result[:st.limit]
	}
	if st.limit > 0 {
		st.applied = append(st.applied, fmt.Sprintf("top %d", st.limit))
	}

	if result == nil {
		result = []Student{}
	}
	if st.applied == nil {
		st.applied = []string{}
	}
	return QueryResult{Students: result, Applied: st.applied}
}

// rules returns the matcher rules in their fixed priority order.
func (it *Interpreter) rules() []rule {
	return []rule{
		{"limit", matchLimit},
		{"threshold", matchThreshold},
		{"class", matchClass},
		{"subject", matchSubject},
		{"sort", it.matchSort},
		{"name", matchName},
	}
}

// matchLimit detects a "top N" phrase. The limit is applied last and forces a
// default sort by average grade, descending, unless a sort directive overrides
// it.
func matchLimit(st *parseState) {
	for i := 0; i < len(st.tokens)-1; i++ {
		if st.tokens[i].lower != "top" || st.tokens[i].consumed {
			continue
		}
		n, err := strconv.Atoi(st.tokens[i+1].lower)
		if err != nil || n <= 0 {
			continue
		}
		st.limit = n
		st.consume(i, i+1)
		if !st.hasSort {
			st.hasSort = true
			st.sortKey = "avg"
			st.sortAsc = false
		}
		return
	}
}

// matchThreshold detects "<subject> above <number>" and
// "above <number> [in <subject>]". The filter keeps records whose
// named-subject score, or overall average when the subject is absent, is
// strictly greater than the threshold.
func matchThreshold(st *parseState) {
	for i := 0; i < len(st.tokens)-1; i++ {
		if st.tokens[i].lower != "above" || st.tokens[i].consumed {
			continue
		}
		threshold, err := strconv.ParseFloat(st.tokens[i+1].lower, 64)
		if err != nil {
			continue
		}
		st.consume(i, i+1)

		var subject string
		if i+3 < len(st.tokens) && st.tokens[i+2].lower == "in" {
			subject = st.tokens[i+3].text
			st.consume(i+2, i+3)
		} else if i > 0 && !st.tokens[i-1].consumed && !isStopWord(st.tokens[i-1].lower) && !isNumber(st.tokens[i-1].lower) {
			subject = st.tokens[i-1].text
			st.consume(i - 1)
		}

		describe := fmt.Sprintf("average above %v", threshold)
		if subject != "" {
			describe = fmt.Sprintf("%s above %v", subject, threshold)
		}
		sub := subject
		st.filters = append(st.filters, filterOp{
			describe: describe,
			keep: func(s Student) bool {
				var score float64
				var ok bool
				if sub != "" {
					score, ok = s.Score(sub)
				} else {
					score, ok = s.Average()
				}
				return ok && score > threshold
			},
		})
		return
	}
}

// matchClass detects "class <token>" and filters records whose class label
// case-insensitively contains the token.
func matchClass(st *parseState) {
	for i := 0; i < len(st.tokens)-1; i++ {
		if st.tokens[i].lower != "class" || st.tokens[i].consumed || st.tokens[i+1].consumed {
			continue
		}
		tok := st.tokens[i+1]
		st.consume(i, i+1)
		st.filters = append(st.filters, filterOp{
			describe: fmt.Sprintf("class contains %q", tok.text),
			keep: func(s Student) bool {
				return strings.Contains(strings.ToLower(s.Class), tok.lower)
			},
		})
		return
	}
}

// matchSubject detects tokens that exactly match a known subject name
// (case-insensitive) in the vocabulary derived from the whole collection and
// filters records listing at least one of them.
func matchSubject(st *parseState) {
	var detected []string
	for i := range st.tokens {
		if st.tokens[i].consumed {
			continue
		}
		if display, ok := st.vocab[st.tokens[i].lower]; ok {
			detected = append(detected, display)
			st.consume(i)
		}
	}
	if len(detected) == 0 {
		return
	}
	st.filters = append(st.filters, filterOp{
		describe: "subject " + strings.Join(detected, " or "),
		keep: func(s Student) bool {
			for _, sub := range detected {
				if s.HasSubject(sub) {
					return true
				}
			}
			return false
		},
	})
}

// matchName detects "name <token>"; absent that, leftover unconsumed
// non-stop-word tokens become an implicit AND of substring matches against a
// composite haystack of name, class and subjects.
func matchName(st *parseState) {
	for i := 0; i < len(st.tokens)-1; i++ {
		if st.tokens[i].lower != "name" || st.tokens[i].consumed || st.tokens[i+1].consumed {
			continue
		}
		tok := st.tokens[i+1]
		st.consume(i, i+1)
		st.filters = append(st.filters, filterOp{
			describe: fmt.Sprintf("name contains %q", tok.text),
			keep: func(s Student) bool {
				return strings.Contains(strings.ToLower(s.Name), tok.lower)
			},
		})
		return
	}

	for i := range st.tokens {
		tok := st.tokens[i]
		if tok.consumed || isStopWord(tok.lower) || isNumber(tok.lower) {
			continue
		}
		st.consume(i)
		st.filters = append(st.filters, filterOp{
			describe: fmt.Sprintf("match %q", tok.text),
			keep: func(s Student) bool {
				return strings.Contains(haystack(s), tok.lower)
			},
		})
	}
}

// matchSort detects a sort directive:
// ("sort"|"order") ["by"] key ["asc"|"desc"], or a bare "by" key form.
// The default direction is descending.
func (it *Interpreter) matchSort(st *parseState) {
	for i := 0; i < len(st.tokens)-1; i++ {
		tok := st.tokens[i]
		if tok.consumed {
			continue
		}
		if tok.lower != "sort" && tok.lower != "order" && tok.lower != "by" {
			continue
		}
		j := i + 1
		if (tok.lower == "sort" || tok.lower == "order") && j < len(st.tokens) && st.tokens[j].lower == "by" {
			j++
		}
		if j >= len(st.tokens) {
			continue
		}
		key := normalizeSortKey(st.tokens[j].lower)
		if key == "" {
			continue
		}
		st.consume(i, j)
		if j > i+1 {
			st.consume(i + 1)
		}

		st.hasSort = true
		st.sortKey = key
		st.sortAsc = false
		if j+1 < len(st.tokens) {
			switch st.tokens[j+1].lower {
			case "asc", "ascending":
				st.sortAsc = true
				st.consume(j + 1)
			case "desc", "descending":
				st.consume(j + 1)
			}
		}
		return
	}
}

func (it *Interpreter) sortStudents(students []Student, key string, asc bool) {
	// stable: equal sort keys preserve the incoming order
	sort.SliceStable(students, func(i, j int) bool {
		var less bool
		switch key {
		case "name":
			less = it.collator.CompareString(students[i].Name, students[j].Name) < 0
		case "age":
			less = students[i].Age < students[j].Age
		case "attendance":
			// records carry no attendance value; every key compares equal and
			// the stable sort preserves the incoming order
			return false
		default: // avg
			less = avgOrLowest(students[i]) < avgOrLowest(students[j])
		}
		if asc {
			return less
		}
		return !less && !equalKey(students[i], students[j], key, it.collator)
	})
}

func equalKey(a, b Student, key string, coll *collate.Collator) bool {
	switch key {
	case "name":
		return coll.CompareString(a.Name, b.Name) == 0
	case "age":
		return a.Age == b.Age
	case "attendance":
		return true
	default:
		return avgOrLowest(a) == avgOrLowest(b)
	}
}

// avgOrLowest treats an undefined average (empty grade map) as the lowest
// possible value; it must not be conflated with a zero average.
func avgOrLowest(s Student) float64 {
	if avg, ok := s.Average(); ok {
		return avg
	}
	return -1
}

func normalizeSortKey(key string) string {
	switch key {
	case "avg", "average", "grade", "grades":
		return "avg"
	case "name":
		return "name"
	case "age":
		return "age"
	case "attendance":
		return "attendance"
	}
	return ""
}

func haystack(s Student) string {
	parts := append([]string{s.Name, s.Class}, s.Subjects...)
	return strings.ToLower(strings.Join(parts, " "))
}

func subjectVocabulary(students []Student) map[string]string {
	vocab := make(map[string]string)
	for _, s := range students {
		for _, sub := range s.Subjects {
			vocab[core.CleanString(sub, true /* lower */)] = sub
		}
		for sub := range s.Grades {
			if _, ok := vocab[core.CleanString(sub, true)]; !ok {
				vocab[core.CleanString(sub, true)] = sub
			}
		}
	}
	delete(vocab, "")
	return vocab
}

func tokenize(query string) []token {
	fields := strings.Fields(query)
	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.;:!?\"'")
		if f == "" {
			continue
		}
		tokens = append(tokens, token{text: f, lower: strings.ToLower(f)})
	}
	return tokens
}

func (st *parseState) consume(idxs ...int) {
	for _, i := range idxs {
		if i >= 0 && i < len(st.tokens) {
			st.tokens[i].consumed = true
		}
	}
}

var stopWords = map[string]bool{
	"a": true, "all": true, "an": true, "and": true, "are": true, "asc": true,
	"below": true, "by": true, "desc": true, "find": true, "get": true, "give": true,
	"grades": true, "have": true, "having": true, "in": true, "is": true,
	"list": true, "me": true, "of": true, "or": true, "score": true,
	"scores": true, "show": true, "student": true, "students": true,
	"than": true, "that": true, "the": true, "was": true, "were": true,
	"who": true, "with": true,
}

func isStopWord(tok string) bool { return stopWords[tok] }

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

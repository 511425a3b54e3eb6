package student

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source-document key aliases, tried in order; the first present non-nil value
// wins.
var (
	idAliases           = []string{"id", "_id", "student_id", "studentId"}
	ownerAliases        = []string{"user_id", "userId", "owner", "owner_id"}
	nameAliases         = []string{"name", "student_name", "studentName", "full_name", "fullName"}
	ageAliases          = []string{"age", "student_age", "studentAge"}
	classAliases        = []string{"class", "class_name", "className", "grade_level", "standard"}
	subjectsAliases     = []string{"subjects", "subject_list", "subjectList", "courses"}
	gradesAliases       = []string{"grades", "marks", "scores", "grade_map", "gradeMap"}
	addressAliases      = []string{"address", "address_block", "addressBlock"}
	guardianAliases     = []string{"guardian", "parent", "parent_info", "parentInfo"}
	classTeacherAliases = []string{"class_teacher", "classTeacher", "teacher"}
	subjectHeadsAliases = []string{"subject_heads", "subjectHeads", "hods"}
	createdAtAliases    = []string{"created_at", "createdAt"}
	updatedAtAliases    = []string{"updated_at", "updatedAt"}
)

// Defaults applied when a field cannot be resolved from the document.
const (
	DefaultName  = "Unnamed"
	DefaultClass = "Unknown"
)

// FromDocument reconciles an arbitrary document into a canonical Student.
// It never fails: malformed or missing fields degrade to defaults rather than
// surfacing an error.
func FromDocument(doc map[string]interface{}) Student {
	now := time.Now().UTC()

	s := Student{
		ID:        asString(resolve(doc, idAliases)),
		Owner:     asString(resolve(doc, ownerAliases)),
		Name:      asString(resolve(doc, nameAliases)),
		Age:       asInt(resolve(doc, ageAliases)),
		Class:     asString(resolve(doc, classAliases)),
		Subjects:  asSubjects(resolve(doc, subjectsAliases)),
		Grades:    asGrades(resolve(doc, gradesAliases)),
		CreatedAt: asTime(resolve(doc, createdAtAliases), now),
		UpdatedAt: asTime(resolve(doc, updatedAtAliases), now),
	}

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Name == "" {
		s.Name = DefaultName
	}
	if s.Class == "" {
		s.Class = DefaultClass
	}
	if s.UpdatedAt.Before(s.CreatedAt) {
		s.UpdatedAt = s.CreatedAt
	}

	// optional blocks are passed through structurally; their internal shape is
	// not validated here
	s.Address = asBlock(resolve(doc, addressAliases))
	s.Guardian = asBlock(resolve(doc, guardianAliases))
	s.ClassTeacher = asBlock(resolve(doc, classTeacherAliases))
	s.SubjectHeads = asBlockMap(resolve(doc, subjectHeadsAliases))

	return s
}

func resolve(doc map[string]interface{}, aliases []string) interface{} {
	for _, key := range aliases {
		if val, ok := doc[key]; ok && val != nil {
			return val
		}
	}
	return nil
}

func asString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	}
	return ""
}

func asInt(v interface{}) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(math.Round(val))
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return int(math.Round(n))
		}
	}
	return 0
}

// asSubjects accepts a sequence or a comma-separated string and normalizes to
// a slice of trimmed non-empty strings.
func asSubjects(v interface{}) []string {
	var raw []string
	switch val := v.(type) {
	case []string:
		raw = val
	case []interface{}:
		for _, item := range val {
			raw = append(raw, asString(item))
		}
	case string:
		raw = strings.Split(val, ",")
	default:
		return []string{}
	}

	subjects := make([]string, 0, len(raw))
	for _, sub := range raw {
		if sub = strings.TrimSpace(sub); sub != "" {
			subjects = append(subjects, sub)
		}
	}
	return subjects
}

// asGrades accepts an object, a JSON-encoded string, or a comma/colon
// delimited string ("Subject:Score,Subject:Score") and decodes to a
// subject → score map. Decoding failures at any stage fall back to an empty
// map.
func asGrades(v interface{}) map[string]int {
	grades := make(map[string]int)

	switch val := v.(type) {
	case map[string]int:
		for sub, score := range val {
			grades[sub] = score
		}
	case map[string]interface{}:
		for sub, score := range val {
			grades[sub] = asScore(score)
		}
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return grades
		}
		if strings.HasPrefix(val, "{") {
			var decoded map[string]interface{}
			if err := json.Unmarshal([]byte(val), &decoded); err != nil {
				return grades
			}
			for sub, score := range decoded {
				grades[sub] = asScore(score)
			}
			return grades
		}
		for _, pair := range strings.Split(val, ",") {
			parts := strings.SplitN(pair, ":", 2)
			if len(parts) != 2 {
				continue
			}
			sub := strings.TrimSpace(parts[0])
			if sub == "" {
				continue
			}
			grades[sub] = asScore(parts[1])
		}
	}
	return grades
}

// asScore coerces a single grade value to an integer score, stripping
// non-numeric characters from strings ("90%" → 90), rounding to the nearest
// integer and clamping invalid values to 0.
func asScore(v interface{}) int {
	switch val := v.(type) {
	case int:
		if val < 0 {
			return 0
		}
		return val
	case float64:
		if val < 0 {
			return 0
		}
		return int(math.Round(val))
	case string:
		var b strings.Builder
		for _, r := range val {
			if (r >= '0' && r <= '9') || r == '.' {
				b.WriteRune(r)
			}
		}
		n, err := strconv.ParseFloat(b.String(), 64)
		if err != nil {
			return 0
		}
		return int(math.Round(n))
	}
	return 0
}

func asBlock(v interface{}) Block {
	switch val := v.(type) {
	case Block:
		return val
	case map[string]interface{}:
		return Block(val)
	}
	return nil
}

func asBlockMap(v interface{}) map[string]Block {
	switch val := v.(type) {
	case map[string]Block:
		return val
	case map[string]interface{}:
		heads := make(map[string]Block, len(val))
		for sub, block := range val {
			if b := asBlock(block); b != nil {
				heads[sub] = b
			}
		}
		if len(heads) == 0 {
			return nil
		}
		return heads
	}
	return nil
}

func asTime(v interface{}, fallback time.Time) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val.UTC()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t.UTC()
			}
		}
	case float64: // unix seconds or millis
		if val > 1e12 {
			return time.Unix(0, int64(val)*int64(time.Millisecond)).UTC()
		}
		if val > 0 {
			return time.Unix(int64(val), 0).UTC()
		}
	}
	return fallback
}

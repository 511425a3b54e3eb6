package student

import (
	"reflect"
	"testing"
	"time"
)

func TestFromDocument_defaults(t *testing.T) {
	s := FromDocument(map[string]interface{}{})

	if s.ID == "" {
		t.Error("missing id must be generated")
	}
	if s.Name != DefaultName {
		t.Errorf("Name = %q, want %q", s.Name, DefaultName)
	}
	if s.Age != 0 {
		t.Errorf("Age = %d, want 0", s.Age)
	}
	if s.Class != DefaultClass {
		t.Errorf("Class = %q, want %q", s.Class, DefaultClass)
	}
	if s.Subjects == nil || len(s.Subjects) != 0 {
		t.Errorf("Subjects = %v, want empty slice", s.Subjects)
	}
	if s.Grades == nil || len(s.Grades) != 0 {
		t.Errorf("Grades = %v, want empty map", s.Grades)
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Error("timestamps must be stamped")
	}

	// two consecutive normalizations of an id-less document must not collide
	if other := FromDocument(map[string]interface{}{}); other.ID == s.ID {
		t.Error("generated ids must be unique")
	}
}

func TestFromDocument_aliases(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		doc  map[string]interface{}
		want Student
	}{
		{
			name: "canonical keys",
			doc: map[string]interface{}{
				"id": "s1", "name": "Amina", "age": 12, "class": "Class 7",
				"subjects": []interface{}{"Math", "English"},
				"grades":   map[string]interface{}{"Math": float64(90)},
			},
			want: Student{
				ID: "s1", Name: "Amina", Age: 12, Class: "Class 7",
				Subjects: []string{"Math", "English"},
				Grades:   map[string]int{"Math": 90},
			},
		},
		{
			name: "alias keys",
			doc: map[string]interface{}{
				"_id": "s2", "student_name": "Baraka", "student_age": "13",
				"class_name": "Class 8", "subject_list": "Math, Physics",
				"marks": map[string]interface{}{"Math": "55"},
			},
			want: Student{
				ID: "s2", Name: "Baraka", Age: 13, Class: "Class 8",
				Subjects: []string{"Math", "Physics"},
				Grades:   map[string]int{"Math": 55},
			},
		},
		{
			name: "camelCase keys",
			doc: map[string]interface{}{
				"studentId": "s3", "fullName": "Chanel", "studentAge": float64(12.4),
				"className": "Class 7", "courses": []string{"Biology"},
				"gradeMap": map[string]interface{}{"Biology": 78.6},
			},
			want: Student{
				ID: "s3", Name: "Chanel", Age: 12, Class: "Class 7",
				Subjects: []string{"Biology"},
				Grades:   map[string]int{"Biology": 79},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDocument(tt.doc)
			if got.ID != tt.want.ID || got.Name != tt.want.Name ||
				got.Age != tt.want.Age || got.Class != tt.want.Class {
				t.Errorf("FromDocument() = %+v, want fields of %+v", got, tt.want)
			}
			if !reflect.DeepEqual(got.Subjects, tt.want.Subjects) {
				t.Errorf("Subjects = %v, want %v", got.Subjects, tt.want.Subjects)
			}
			if !reflect.DeepEqual(got.Grades, tt.want.Grades) {
				t.Errorf("Grades = %v, want %v", got.Grades, tt.want.Grades)
			}
		})
	}

	t.Run("timestamps", func(t *testing.T) {
		got := FromDocument(map[string]interface{}{
			"name":       "Amina",
			"created_at": created.Format(time.RFC3339),
			"updated_at": float64(created.Add(time.Hour).Unix()),
		})
		if !got.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
		}
		if !got.UpdatedAt.Equal(created.Add(time.Hour)) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, created.Add(time.Hour))
		}
	})

	t.Run("updated never precedes created", func(t *testing.T) {
		got := FromDocument(map[string]interface{}{
			"name":       "Amina",
			"created_at": created.Format(time.RFC3339),
			"updated_at": created.Add(-time.Hour).Format(time.RFC3339),
		})
		if !got.UpdatedAt.Equal(got.CreatedAt) {
			t.Errorf("UpdatedAt = %v, want clamped to CreatedAt %v", got.UpdatedAt, got.CreatedAt)
		}
	})
}

func Test_asGrades(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want map[string]int
	}{
		{name: "nil", in: nil, want: map[string]int{}},
		{name: "object", in: map[string]interface{}{"Math": float64(90), "English": "72"}, want: map[string]int{"Math": 90, "English": 72}},
		{name: "json string", in: `{"Math": "90%", "Physics": 85}`, want: map[string]int{"Math": 90, "Physics": 85}},
		{name: "malformed json string", in: `{"Math": `, want: map[string]int{}},
		{name: "colon pairs", in: "Math:90,Physics:85", want: map[string]int{"Math": 90, "Physics": 85}},
		{name: "colon pairs with spaces", in: " Math : 90 , Physics : 85 ", want: map[string]int{"Math": 90, "Physics": 85}},
		{name: "pair without score", in: "Math,Physics:85", want: map[string]int{"Physics": 85}},
		{name: "empty string", in: "   ", want: map[string]int{}},
		{name: "unsupported type", in: 42, want: map[string]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := asGrades(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("asGrades() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_asScore(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want int
	}{
		{name: "int", in: 90, want: 90},
		{name: "negative int", in: -5, want: 0},
		{name: "float rounds", in: 78.6, want: 79},
		{name: "negative float", in: -0.4, want: 0},
		{name: "percent string", in: "90%", want: 90},
		{name: "decimal string", in: "89.5", want: 90},
		{name: "string with noise", in: " 88 pts ", want: 88},
		{name: "non-numeric string", in: "absent", want: 0},
		{name: "nil", in: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := asScore(tt.in); got != tt.want {
				t.Errorf("asScore(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func Test_asSubjects(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []string
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "string slice", in: []string{"Math", " English "}, want: []string{"Math", "English"}},
		{name: "interface slice", in: []interface{}{"Math", ""}, want: []string{"Math"}},
		{name: "comma string", in: "Math, English,,Physics", want: []string{"Math", "English", "Physics"}},
		{name: "unsupported type", in: 42, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := asSubjects(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("asSubjects() = %v, want %v", got, tt.want)
			}
		})
	}
}

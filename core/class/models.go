package class

import "time"

// Meta is a per-class metadata document. It lives in its own collection and is
// not tied 1:1 to student class labels: it is populated by a one-shot upsert
// seeding operation and read-only afterwards.
type Meta struct {
	Name           string    `json:"name"`
	Address        string    `json:"address,omitempty"`
	Teacher        string    `json:"teacher,omitempty"`
	ParentContact  string    `json:"parent_contact,omitempty"`
	AttendanceRate string    `json:"attendance_rate,omitempty"`
	GradeA         int       `json:"grade_a"`
	GradeB         int       `json:"grade_b"`
	GradeC         int       `json:"grade_c"`
	GradeD         int       `json:"grade_d"`
	TotalStudents  int       `json:"total_students"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tmusoni/darasa/core/class"
	"github.com/tmusoni/darasa/core/student"
	testutil "github.com/tmusoni/darasa/tests"
)

func Test_classApi_summaries(t *testing.T) {
	app := setup(t)

	testutil.CreateStudent(t, studentRepo, "Amina Juma", "Class 7", 12, map[string]int{"Math": 90})
	testutil.CreateStudent(t, studentRepo, "Baraka Phiri", "Class 7", 13, map[string]int{"Math": 72})
	testutil.CreateStudent(t, studentRepo, "Chanel Okafor", "Class 7", 12, map[string]int{"Math": 40})
	testutil.CreateStudent(t, studentRepo, "David Kamau", "Class 7", 12, nil) // ungraded
	testutil.CreateStudent(t, studentRepo, "Esther Banda", "", 11, map[string]int{"English": 60})

	want := []student.ClassSummary{
		{
			Class: "Class 7", Count: 4, Graded: 3, Average: 67.3, Subjects: 1,
			Buckets: student.GradeBuckets{A: 1, B: 1, D: 1},
		},
		{
			Class: student.UnassignedClass, Count: 1, Graded: 1, Average: 60, Subjects: 1,
			Buckets: student.GradeBuckets{C: 1},
		},
	}

	tt := httpTest{
		name: "summaries", method: http.MethodGet, path: "/v1/classes",
		wantCode: http.StatusOK, wantData: marchallList(t, want[0], want[1]),
	}
	t.Run(tt.name, func(t *testing.T) {
		req, rec := newRequest(tt.method, tt.path)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_classApi_meta(t *testing.T) {
	app := setup(t)

	now := time.Now().UTC()
	meta, err := classRepo.UpsertClassMeta(context.Background(), class.Meta{
		Name:          "Class 7",
		Teacher:       "J. Mollel",
		TotalStudents: 31,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("UpsertClassMeta() failed, %v", err)
	}

	tt := httpTest{
		name: "meta", method: http.MethodGet, path: "/v1/classes/meta",
		wantCode: http.StatusOK, wantData: marchallList(t, meta),
	}
	t.Run(tt.name, func(t *testing.T) {
		req, rec := newRequest(tt.method, tt.path)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_classApi_students(t *testing.T) {
	app := setup(t)

	amina := testutil.CreateStudent(t, studentRepo, "Amina Juma", "Class 7", 12, map[string]int{"Math": 90})
	testutil.CreateStudent(t, studentRepo, "Baraka Phiri", "Class 8", 13, map[string]int{"Math": 72})

	tests := []httpTest{
		{name: "match", path: "/v1/classes/Class%207/students", wantData: marchallList(t, amina)},
		{name: "exact label only", path: "/v1/classes/Class/students", wantData: marchallList(t, []interface{}{}...)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

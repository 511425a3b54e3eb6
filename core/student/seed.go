package student

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
)

var (
	seedFirstNames = []string{
		"Amina", "Baraka", "Chanel", "David", "Esther", "Farida", "Gloria",
		"Hassan", "Imani", "Joseph", "Kito", "Lydia", "Moses", "Neema",
		"Omari", "Pendo", "Rehema", "Samuel", "Tumaini", "Zawadi",
	}
	seedLastNames = []string{
		"Abedi", "Banda", "Chiku", "Dlamini", "Egesa", "Furaha", "Gakuru",
		"Habimana", "Juma", "Kamau", "Lukwago", "Mwangi", "Ndlovu", "Okafor",
		"Phiri", "Sibanda", "Tadesse", "Wanjiru", "Zuberi",
	}
	seedSubjects = []string{"Math", "English", "Physics", "Chemistry", "Biology", "History", "Geography", "Kiswahili"}
	seedClasses  = []string{"Class 5", "Class 6", "Class 7", "Class 8", "Class 9", "Class 10"}
)

// Seed bulk-generates n random student records through the regular create
// path.
func (svc *Service) Seed(ctx context.Context, n int, rng *rand.Rand) ([]Student, error) {
	created := make([]Student, 0, n)
	for i := 0; i < n; i++ {
		ns := randomStudent(rng)
		s, err := svc.Create(ctx, ns)
		if err != nil {
			return created, errors.Wrapf(err, "seeding student %d of %d", i+1, n)
		}
		created = append(created, s)
	}
	return created, nil
}

func randomStudent(rng *rand.Rand) NewStudent {
	name := fmt.Sprintf("%s %s",
		seedFirstNames[rng.Intn(len(seedFirstNames))],
		seedLastNames[rng.Intn(len(seedLastNames))],
	)

	count := 3 + rng.Intn(4) // 3..6 subjects
	picked := rng.Perm(len(seedSubjects))[:count]
	subjects := make([]string, 0, count)
	grades := make(map[string]int, count)
	for _, idx := range picked {
		sub := seedSubjects[idx]
		subjects = append(subjects, sub)
		grades[sub] = 35 + rng.Intn(66) // 35..100
	}

	return NewStudent{
		Name:     name,
		Age:      10 + rng.Intn(9), // 10..18
		Class:    seedClasses[rng.Intn(len(seedClasses))],
		Subjects: subjects,
		Grades:   grades,
		Guardian: Block{
			"name":     "Parent of " + name,
			"phone":    fmt.Sprintf("+2557%08d", rng.Intn(100000000)),
			"relation": "parent",
		},
	}
}

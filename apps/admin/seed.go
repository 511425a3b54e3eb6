package main

import (
	"context"
	"math/rand"
	"time"
)

// seed populates the store with n random students and the demo class meta.
func (cli *commandLine) seed(n int) error {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	students, err := cli.studentSvc.Seed(ctx, n, rng)
	if err != nil {
		return err
	}
	logger.Printf("seeded %d students", len(students))

	meta, err := cli.classSvc.Seed(ctx)
	if err != nil {
		return err
	}
	logger.Printf("seeded meta for %d classes", len(meta))
	return nil
}

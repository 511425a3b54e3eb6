package main

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/tmusoni/darasa/core"
	"github.com/tmusoni/darasa/core/student"
)

// importStudents loads a roster from an xlsx file. The first sheet is read
// with a header row; columns are name, age, class in that order. defaultClass
// fills in rows whose class column is empty.
func (cli *commandLine) importStudents(path, defaultClass string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return errors.Wrap(err, "opening roster file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Printf("closing roster file: %v", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return errors.New("roster file has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return errors.Wrapf(err, "reading sheet %q", sheet)
	}

	ctx := context.Background()
	imported := 0
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		ns := rowToNewStudent(row)
		if ns.Name == "" {
			logger.Printf("skipping row %d: no name", i+1)
			continue
		}
		if ns.Class == "" {
			ns.Class = defaultClass
		}
		if _, err = cli.studentSvc.Create(ctx, ns); err != nil {
			return errors.Wrapf(err, "importing row %d", i+1)
		}
		imported++
	}
	logger.Printf("imported %d students", imported)
	return nil
}

func rowToNewStudent(row []string) student.NewStudent {
	var ns student.NewStudent
	if len(row) > 0 {
		ns.Name = core.CleanString(row[0])
	}
	if len(row) > 1 {
		if age, err := strconv.Atoi(core.CleanString(row[1])); err == nil && age >= 0 {
			ns.Age = age
		}
	}
	if len(row) > 2 {
		ns.Class = core.CleanString(row[2])
	}
	return ns
}

package main

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/tulamba/mafunzo/core/course"
	"github.com/tulamba/mafunzo/core/employee"
	"github.com/tulamba/mafunzo/fs"
	"github.com/tulamba/mafunzo/storage/snapshot"
)

// seed writes the embedded seed data into the snapshot store. Existing
// snapshots are kept unless force is set.
func (cli *commandLine) seed(force bool) error {
	ctx := context.Background()

	if !force {
		var sink interface{}
		for _, collection := range []string{snapshot.Courses, snapshot.Employees} {
			if err := cli.snaps.Load(ctx, collection, &sink); err == nil || snapshot.IsCorrupt(err) {
				return errSeedRefused
			}
		}
	}

	var courses []course.Course
	if err := readSeed("data/courses.json", &courses); err != nil {
		return err
	}
	if err := cli.snaps.Save(ctx, snapshot.Courses, courses); err != nil {
		return err
	}

	var employees []employee.Employee
	if err := readSeed("data/employees.json", &employees); err != nil {
		return err
	}
	if err := cli.snaps.Save(ctx, snapshot.Employees, employees); err != nil {
		return err
	}

	logger.Printf("seeded %d courses, %d employees\n", len(courses), len(employees))
	return nil
}

func readSeed(path string, dest interface{}) error {
	blob, err := appfs.FS.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return errors.Wrapf(json.Unmarshal(blob, dest), "decoding %s", path)
}

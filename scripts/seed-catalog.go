// Command seed-catalog loads a small demonstration catalog of schools,
// teachers and projects so the funding endpoints have something to
// serve in a fresh environment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/classfund/classfund/internal/repository"
)

type seeded struct {
	SchoolID   string   `json:"school_id"`
	TeacherID  string   `json:"teacher_id"`
	ProjectIDs []string `json:"project_ids"`
}

var projectTitles = []string{
	"Books for Room 12",
	"Microscopes for Budding Biologists",
	"Art Supplies for Spring",
	"A Rug for Story Time",
	"Calculators That Actually Work",
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		schoolName  = flag.String("school", "Jefferson Elementary", "School name")
		teacherName = flag.String("teacher", "Ms. Rivera", "Teacher name")
		projects    = flag.Int("projects", 3, "Number of projects to create (max 5)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *projects < 1 || *projects > len(projectTitles) {
		fmt.Fprintf(os.Stderr, "projects must be between 1 and %d\n", len(projectTitles))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	pool := repo.Pool()

	out := seeded{
		SchoolID:  "nces_" + ulid.Make().String(),
		TeacherID: "t_" + ulid.Make().String(),
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO schools (ncesid, name) VALUES ($1, $2)`,
		out.SchoolID, *schoolName,
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "insert school:", err)
		os.Exit(1)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO teachers (tid, name, ncesid) VALUES ($1, $2, $3)`,
		out.TeacherID, *teacherName, out.SchoolID,
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "insert teacher:", err)
		os.Exit(1)
	}

	for i := 0; i < *projects; i++ {
		pid := "p_" + ulid.Make().String()
		_, err = pool.Exec(ctx, `
			INSERT INTO projects (pid, tid, ncesid, title, subject, short_description,
			                      num_students, percent_funded, total_price, expiration_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			pid,
			out.TeacherID,
			out.SchoolID,
			projectTitles[i],
			subjectFor(i),
			fmt.Sprintf("%s, for a class of %d.", projectTitles[i], 18+i),
			18+i,
			rand.Float64()*0.6,
			fmt.Sprintf("%d.00", 150+50*i),
			time.Now().UTC().AddDate(0, 1+i, 0),
		)
		if err != nil {
			fmt.Fprintln(os.Stderr, "insert project:", err)
			os.Exit(1)
		}
		out.ProjectIDs = append(out.ProjectIDs, pid)
	}

	switch strings.ToLower(*format) {
	case "plain":
		for _, pid := range out.ProjectIDs {
			fmt.Println(pid)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// subjectFor leaves some projects without a subject so the optional
// rendering path gets exercised by seeded data too.
func subjectFor(i int) *string {
	subjects := []string{"Literacy", "Science", "Art"}
	if i >= len(subjects) {
		return nil
	}
	return &subjects[i]
}

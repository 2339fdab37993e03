// Command course-check validates a course file and prints its card.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mortargolf/backend/internal/game"
	"github.com/mortargolf/backend/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("course", "", "path to a course YAML file (empty for the built-in course)")
	flag.Parse()

	logging.Setup("info", true)

	course := game.DefaultCourse()
	if *path != "" {
		var err error
		course, err = game.LoadCourse(*path)
		if err != nil {
			log.Fatal().Err(err).Str("file", *path).Msg("course is invalid")
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\n\n", course.Name)
	fmt.Fprintln(w, "HOLE\tPAR\tDISTANCE")
	for _, h := range course.Holes {
		fmt.Fprintf(w, "%d\t%d\t%.0fm\n", h.Number, h.Par, h.Distance)
	}
	fmt.Fprintf(w, "TOTAL\t%d\t%.0fm\n", course.TotalPar(), course.TotalDistance())
	w.Flush()
}

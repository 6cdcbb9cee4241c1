// Command demo-report replays recorded demos headlessly and prints a debrief
// for each, plus an aggregate across every demo and run.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"reflect"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/message"

	"github.com/Garsondee/soldier-campaign/internal/demo"
	"github.com/Garsondee/soldier-campaign/internal/gamedata"
	"github.com/Garsondee/soldier-campaign/internal/skirmish"
	"github.com/Garsondee/soldier-campaign/internal/storage"
	"github.com/Garsondee/soldier-campaign/internal/storage/sqlite"
)

type source struct {
	name string
	rec  *demo.Recorded
}

type runStats struct {
	demo     string
	runIndex int
	result   demo.PlaybackResult
	debrief  skirmish.Debrief
	elapsed  time.Duration
}

func main() {
	var runs int
	var dbPath string
	var stored string
	var list bool
	var campaignFile string

	flag.IntVar(&runs, "runs", 1, "replays per demo; more than one checks the replays agree")
	flag.StringVar(&dbPath, "db", "", "save database to read demos from")
	flag.StringVar(&stored, "demo", "", "name of a demo in the save database")
	flag.BoolVar(&list, "list", false, "list the demos in the save database and exit")
	flag.StringVar(&campaignFile, "campaign-file", "", "campaign JSON (default: built-in campaign)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store storage.DemoStore
	if dbPath != "" {
		s, err := sqlite.Open(dbPath)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	}
	if list {
		if store == nil {
			fmt.Println("error: -list needs -db")
			os.Exit(2)
		}
		if err := printDemoList(ctx, os.Stdout, store); err != nil {
			fmt.Printf("error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	campaign, err := gamedata.LoadCampaignFile(campaignFile)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	sources, err := collectSources(ctx, store, stored, flag.Args())
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		fmt.Println("error: no demos given (pass demo files or -db with -demo)")
		os.Exit(2)
	}

	p := skirmish.NewPrinter()
	fmt.Printf("=== Demo Report ===\n")
	fmt.Printf("campaign=%q demos=%d runs=%d\n\n", campaign.Name(), len(sources), runs)

	var all []runStats
	diverged := 0
	for _, src := range sources {
		var first *runStats
		for i := 0; i < runs; i++ {
			rs, err := replay(ctx, campaign, src, i+1)
			if err != nil {
				fmt.Printf("error: %s run %d: %v\n", src.name, i+1, err)
				os.Exit(1)
			}
			if first == nil {
				first = &rs
				printRun(os.Stdout, p, rs)
			} else if !sameRun(*first, rs) {
				diverged++
				fmt.Printf("DIVERGED: %s run %d does not match run 1\n", src.name, i+1)
			}
			all = append(all, rs)
		}
	}
	printAggregate(os.Stdout, p, all, diverged)
	if diverged > 0 {
		os.Exit(1)
	}
}

// collectSources loads demo files named in args and the stored demo, if any.
func collectSources(ctx context.Context, store storage.DemoStore, stored string, args []string) ([]source, error) {
	var out []source
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open demo: %w", err)
		}
		rec, err := demo.Load(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, source{name: path, rec: rec})
	}
	if stored == "" {
		return out, nil
	}
	if store == nil {
		return nil, fmt.Errorf("-demo needs -db")
	}
	d, err := store.GetDemo(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("demo %q: %w", stored, err)
	}
	rec, err := demo.Load(bytes.NewReader(d.Data))
	if err != nil {
		return nil, fmt.Errorf("demo %q: %w", stored, err)
	}
	return append(out, source{name: d.Name, rec: rec}), nil
}

// replay plays src once from its seed through a fresh session.
func replay(ctx context.Context, c gamedata.Campaign, src source, runIndex int) (runStats, error) {
	sess, err := gamedata.NewPlayback(c, src.rec)
	if err != nil {
		return runStats{}, err
	}
	sim, err := skirmish.New(sess)
	if err != nil {
		return runStats{}, err
	}
	start := time.Now()
	res, err := sess.Recorded.Playback(ctx, sim)
	if err != nil {
		return runStats{}, err
	}
	return runStats{
		demo:     src.name,
		runIndex: runIndex,
		result:   res,
		debrief:  sim.Debrief(),
		elapsed:  time.Since(start),
	}, nil
}

// sameRun reports whether two replays of one demo ended identically.
func sameRun(a, b runStats) bool {
	return a.result == b.result && reflect.DeepEqual(a.debrief, b.debrief)
}

func printRun(w io.Writer, p *message.Printer, rs runStats) {
	fmt.Fprintf(w, "--- %s ---\n", rs.demo)
	p.Fprintf(w, "playback: ticks=%d delivered=%d dropped=%d ended=%v elapsed=%s\n",
		rs.result.Ticks, rs.result.Delivered, rs.result.Dropped, rs.result.Ended, rs.elapsed.Round(time.Millisecond))
	_ = skirmish.WriteReport(w, rs.debrief, p)
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, p *message.Printer, all []runStats, diverged int) {
	outcomes := map[string]int{}
	totalTicks := 0
	totalDropped := 0
	var grades []skirmish.TroopGrade
	for _, rs := range all {
		outcomes[rs.debrief.Outcome.String()]++
		totalTicks += int(rs.result.Ticks)
		totalDropped += rs.result.Dropped
		grades = append(grades, skirmish.GradeRoster(rs.debrief)...)
	}

	fmt.Fprintln(w, "=== Aggregate ===")
	p.Fprintf(w, "runs=%d diverged=%d\n", len(all), diverged)
	p.Fprintf(w, "avg_ticks=%.1f avg_dropped=%.1f\n", avg(totalTicks, len(all)), avg(totalDropped, len(all)))
	fmt.Fprintf(w, "outcomes: %s\n", joinCounts(outcomes))
	if len(grades) > 0 {
		a := skirmish.AverageScore(grades)
		p.Fprintf(w, "troop_grade_avg=%.1f (%s) graded=%d\n", a, skirmish.LetterGrade(a), len(grades))
	}
}

func printDemoList(ctx context.Context, w io.Writer, store storage.DemoStore) error {
	demos, err := store.ListDemos(ctx)
	if err != nil {
		return err
	}
	if len(demos) == 0 {
		fmt.Fprintln(w, "no demos stored")
		return nil
	}
	for _, d := range demos {
		fmt.Fprintf(w, "%s  campaign=%q ticks=%d events=%d created=%s\n",
			d.Name, d.Campaign, d.Ticks, d.Events, d.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

// jobscope is an interactive shell for stepping through event logs without
// the HTTP layer.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/jobscope/jobscope"
	"github.com/jobscope/jobscope/internal/ingest"
)

func main() {
	var interval int
	flag.IntVar(&interval, "checkpoint-interval", jobscope.DefaultCheckpointInterval, "checkpoint interval in events")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: jobscope [-checkpoint-interval n] <event-log>...")
		os.Exit(1)
	}

	cfg := jobscope.Config{CheckpointInterval: interval}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	registry := jobscope.NewRegistry()
	for _, path := range flag.Args() {
		meta, log, err := ingest.LoadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		registry.Register(jobscope.NewSource(meta, log, cfg))
		fmt.Printf("loaded %s (%d events) from %s\n", meta.ID, log.Len(), path)
	}

	rl, err := readline.New("jobscope> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	sh := &shell{registry: registry}
	if ids := registry.IDs(); len(ids) == 1 {
		sh.current = ids[0]
	}

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if done := sh.exec(strings.TrimSpace(line)); done {
			return
		}
	}
}

type shell struct {
	registry *jobscope.Registry
	current  string
}

// exec runs one command line and reports whether the shell should exit.
func (s *shell) exec(line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "help":
		fmt.Println("commands: apps, use <id>, forward [n] [event|task|stage|job], rewind [n] [granularity], start, end, progress, state, stages [jobGroup [jobDescription]], quit")
	case "quit", "exit":
		return true
	case "apps":
		for _, id := range s.registry.IDs() {
			marker := " "
			if id == s.current {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, id)
		}
	case "use":
		if len(args) < 1 {
			fmt.Println("usage: use <id>")
			return false
		}
		if _, err := s.registry.Get(args[0]); err != nil {
			fmt.Println(err)
			return false
		}
		s.current = args[0]
	case "forward", "rewind":
		src, ok := s.source()
		if !ok {
			return false
		}
		n := 1
		gran := jobscope.GranularityEvent
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Println("count must be an integer")
				return false
			}
			n = v
		}
		if len(args) > 1 {
			g, err := jobscope.ParseGranularity(args[1])
			if err != nil {
				fmt.Println(err)
				return false
			}
			gran = g
		}
		var err error
		if cmd == "forward" {
			_, err = src.Forward(n, gran)
		} else {
			_, err = src.Rewind(n, gran)
		}
		if err != nil {
			fmt.Println(err)
			return false
		}
		fmt.Println(src.Progress().Description)
	case "start":
		if src, ok := s.source(); ok {
			src.ToStart()
			fmt.Println(src.Progress().Description)
		}
	case "end":
		if src, ok := s.source(); ok {
			src.ToEnd()
			fmt.Println(src.Progress().Description)
		}
	case "progress":
		if src, ok := s.source(); ok {
			printJSON(src.Progress())
		}
	case "state":
		if src, ok := s.source(); ok {
			printJSON(jobscope.BuildStateReport(src.Meta(), src.Snapshot(), src.Progress()))
		}
	case "stages":
		src, ok := s.source()
		if !ok {
			return false
		}
		var filter jobscope.StageFilter
		if len(args) > 0 {
			filter.JobGroup = &args[0]
		}
		if len(args) > 1 {
			filter.JobDescription = &args[1]
		}
		printJSON(jobscope.StageMetrics(src.Snapshot(), filter))
	default:
		fmt.Println("unknown command; try help")
	}
	return false
}

func (s *shell) source() (*jobscope.ScrollingSource, bool) {
	if s.current == "" {
		fmt.Println("no application selected; use apps / use <id>")
		return nil, false
	}
	src, err := s.registry.Get(s.current)
	if err != nil {
		fmt.Println(err)
		return nil, false
	}
	return src, true
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(out))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vinayprograms/todokit/config"
	"github.com/vinayprograms/todokit/search"
	"github.com/vinayprograms/todokit/state"
	"github.com/vinayprograms/todokit/todo"
)

var (
	errNoMatch   = errors.New("no task matches")
	errAmbiguous = errors.New("id prefix is ambiguous")
)

// minShownID is the shortest id prefix printed.
const minShownID = 8

type app struct {
	store  *todo.Store
	kv     state.StateStore
	stdout io.Writer
	stderr io.Writer
}

func (a *app) dispatch(cmd string, args []string) int {
	switch cmd {
	case "add":
		return a.add(args)
	case "toggle":
		return a.byID(args, "toggle", a.store.Toggle)
	case "rm":
		return a.byID(args, "rm", a.store.Remove)
	case "clear":
		if len(args) != 0 {
			return a.usageErr("clear takes no arguments")
		}
		return a.mutated(a.store.ClearCompleted())
	case "ls":
		return a.ls(args)
	case "stats":
		if len(args) != 0 {
			return a.usageErr("stats takes no arguments")
		}
		a.printStats(a.store.Stats())
		return ExitSuccess
	case "find":
		return a.find(args)
	case "lists":
		return a.lists()
	}
	return a.usageErr(fmt.Sprintf("unknown command %q", cmd))
}

func (a *app) usageErr(msg string) int {
	fmt.Fprintf(a.stderr, "todo: %s\n", msg)
	usage(a.stderr)
	return ExitUsage
}

func (a *app) add(args []string) int {
	if len(args) == 0 {
		return a.usageErr("add needs text")
	}
	return a.mutated(a.store.Add(strings.Join(args, " ")))
}

func (a *app) byID(args []string, name string, op func(string) error) int {
	if len(args) != 1 {
		return a.usageErr(name + " needs exactly one id")
	}
	id, err := resolveID(a.store.Tasks(), args[0])
	if err != nil {
		fmt.Fprintf(a.stderr, "todo: %s %q: %v\n", name, args[0], err)
		return ExitFailure
	}
	return a.mutated(op(id))
}

// mutated reports a persist failure as a warning and shows the list again.
func (a *app) mutated(err error) int {
	if err != nil {
		if !todo.IsPersistError(err) {
			fmt.Fprintf(a.stderr, "todo: %v\n", err)
			return ExitFailure
		}
		fmt.Fprintf(a.stderr, "warning: %v (change not saved)\n", err)
	}
	a.printList(a.store.View(todo.FilterAll))
	a.printStats(a.store.Stats())
	return ExitSuccess
}

func (a *app) ls(args []string) int {
	if len(args) > 1 {
		return a.usageErr("ls takes at most one filter")
	}
	f := todo.FilterAll
	if len(args) == 1 {
		f = todo.ParseFilter(args[0])
		if !f.Valid() {
			return a.usageErr(fmt.Sprintf("unknown filter %q (use all, active or done)", args[0]))
		}
	}
	a.printList(a.store.View(f))
	return ExitSuccess
}

func (a *app) find(args []string) int {
	words, filter, err := splitFilterFlag(args)
	if err != nil {
		return a.usageErr(err.Error())
	}
	if len(words) == 0 {
		return a.usageErr("find needs a query")
	}
	f := todo.ParseFilter(filter)
	if !f.Valid() {
		return a.usageErr(fmt.Sprintf("unknown filter %q (use all, active or done)", filter))
	}

	idx, err := search.New()
	if err != nil {
		fmt.Fprintf(a.stderr, "todo: %v\n", err)
		return ExitFailure
	}
	defer idx.Close()

	hits, err := idx.Find(context.Background(), a.store.Tasks(), strings.Join(words, " "), f)
	if err != nil {
		fmt.Fprintf(a.stderr, "todo: %v\n", err)
		return ExitFailure
	}
	a.printList(hits)
	return ExitSuccess
}

// splitFilterFlag pulls "-filter f", "--filter f" or "-filter=f" out of args.
func splitFilterFlag(args []string) ([]string, string, error) {
	var words []string
	filter := ""
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-filter" || arg == "--filter":
			if i+1 >= len(args) {
				return nil, "", fmt.Errorf("%s needs a value", arg)
			}
			filter = args[i+1]
			i++
		case strings.HasPrefix(arg, "-filter="):
			filter = strings.TrimPrefix(arg, "-filter=")
		case strings.HasPrefix(arg, "--filter="):
			filter = strings.TrimPrefix(arg, "--filter=")
		default:
			words = append(words, arg)
		}
	}
	return words, filter, nil
}

func (a *app) lists() int {
	keys, err := a.kv.Keys(config.ListPrefix + "*")
	if err != nil {
		fmt.Fprintf(a.stderr, "todo: %v\n", err)
		return ExitFailure
	}
	current := a.store.Key()
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name, ok := config.ListName(key)
		if !ok {
			continue
		}
		if name == "" {
			name = "(default)"
		}
		if key == current {
			name += " *"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(a.stdout, n)
	}
	return ExitSuccess
}

// resolveID maps an exact id or a unique id prefix to a task id.
func resolveID(list todo.List, arg string) (string, error) {
	if arg == "" {
		return "", errNoMatch
	}
	if list.Index(arg) >= 0 {
		return arg, nil
	}
	match := ""
	for _, t := range list {
		if strings.HasPrefix(t.ID, arg) {
			if match != "" {
				return "", errAmbiguous
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", errNoMatch
	}
	return match, nil
}

// shownIDLen is the shortest prefix length, at least minShownID, that keeps
// every id in list distinct.
func shownIDLen(list todo.List) int {
	longest := 0
	for _, t := range list {
		if len(t.ID) > longest {
			longest = len(t.ID)
		}
	}
	for n := minShownID; n < longest; n++ {
		seen := make(map[string]struct{}, len(list))
		unique := true
		for _, t := range list {
			p := prefix(t.ID, n)
			if _, dup := seen[p]; dup {
				unique = false
				break
			}
			seen[p] = struct{}{}
		}
		if unique {
			return n
		}
	}
	return longest
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (a *app) printList(list todo.List) {
	if len(list) == 0 {
		fmt.Fprintln(a.stdout, "no tasks")
		return
	}
	n := shownIDLen(a.store.Tasks())
	for _, t := range list {
		mark := " "
		if t.Done {
			mark = "x"
		}
		fmt.Fprintf(a.stdout, "[%s] %s  %s\n", mark, prefix(t.ID, n), t.Text)
	}
}

func (a *app) printStats(s todo.Stats) {
	fmt.Fprintf(a.stdout, "%d total, %d active, %d done\n", s.Total, s.Active, s.Done)
}

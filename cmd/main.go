package main

import (
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ergochat/readline"

	"github.com/statelab/statebox"
	"github.com/statelab/statebox/boxstore"
	"github.com/statelab/statebox/utils"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("new"),
	readline.PcItem("show"),
	readline.PcItem("list"),

	readline.PcItem("append"),
	readline.PcItem("upper"),
	readline.PcItem("lower"),
	readline.PcItem("trim"),
	readline.PcItem("merge"),
	readline.PcItem("truncate"),
	readline.PcItem("expire"),

	readline.PcItem("save"),
	readline.PcItem("load"),
	readline.PcItem("revs"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// AppendOp carries its suffix on the wire, so saved boxes with pending
// appends reload in any process that registered the type.
type AppendOp struct {
	Suffix string
}

func (op AppendOp) Invoke(v string) (string, error) {
	return v + op.Suffix, nil
}

func init() {
	gob.Register(AppendOp{})
}

type REPL struct {
	boxes map[string]*statebox.Statebox[string]
	table *statebox.OpTable[string]
	store *boxstore.Store[string]
	rl    *readline.Instance
}

func (repl *REPL) box(name string) (*statebox.Statebox[string], error) {
	st, ok := repl.boxes[name]
	if !ok {
		return nil, fmt.Errorf("no box named %q", name)
	}
	return st, nil
}

func (repl *REPL) namedBranch(dst, src, opname string) error {
	st, err := repl.box(src)
	if err != nil {
		return err
	}
	op, err := repl.table.Op(opname)
	if err != nil {
		return err
	}
	branch, err := st.Modify(op)
	if err != nil {
		return err
	}
	repl.boxes[dst] = branch
	fmt.Printf("%s = %q\n", dst, branch.Value())
	return nil
}

func (repl *REPL) run(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	cmd, args := args[0], args[1:]
	switch cmd {

	case "help":
		fmt.Println("new <name> <text> | show <name> | list\n" +
			"append <dst> <src> <text> | upper/lower/trim <dst> <src>\n" +
			"merge <dst> <src> <more...> | truncate <name> <n> | expire <name> <ms>\n" +
			"save <name> | load <name> | revs <name>")

	case "new":
		if len(args) < 2 {
			return fmt.Errorf("usage: new <name> <text>")
		}
		repl.boxes[args[0]] = statebox.Create(strings.Join(args[1:], " "))
		fmt.Printf("%s = %q\n", args[0], repl.boxes[args[0]].Value())

	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: show <name>")
		}
		st, err := repl.box(args[0])
		if err != nil {
			return err
		}
		fmt.Println(st.String())

	case "list":
		for name, st := range repl.boxes {
			fmt.Printf("%s\t%q\tops=%d\n", name, st.Value(), st.Len())
		}

	case "append":
		if len(args) < 3 {
			return fmt.Errorf("usage: append <dst> <src> <text>")
		}
		st, err := repl.box(args[1])
		if err != nil {
			return err
		}
		branch, err := st.Modify(statebox.OpObj[string](AppendOp{Suffix: strings.Join(args[2:], " ")}))
		if err != nil {
			return err
		}
		repl.boxes[args[0]] = branch
		fmt.Printf("%s = %q\n", args[0], branch.Value())

	case "upper", "lower", "trim":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <dst> <src>", cmd)
		}
		return repl.namedBranch(args[0], args[1], cmd)

	case "merge":
		if len(args) < 2 {
			return fmt.Errorf("usage: merge <dst> <src> <more...>")
		}
		st, err := repl.box(args[1])
		if err != nil {
			return err
		}
		var others []*statebox.Statebox[string]
		for _, name := range args[2:] {
			other, err := repl.box(name)
			if err != nil {
				return err
			}
			others = append(others, other)
		}
		snap, err := st.Merge(others...)
		if err != nil {
			return err
		}
		repl.boxes[args[0]] = snap
		fmt.Printf("%s = %q\n", args[0], snap.Value())

	case "truncate":
		if len(args) != 2 {
			return fmt.Errorf("usage: truncate <name> <n>")
		}
		st, err := repl.box(args[0])
		if err != nil {
			return err
		}
		keep, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		repl.boxes[args[0]] = st.Truncate(keep)

	case "expire":
		if len(args) != 2 {
			return fmt.Errorf("usage: expire <name> <ms>")
		}
		st, err := repl.box(args[0])
		if err != nil {
			return err
		}
		ms, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		st.Expire(time.Duration(ms) * time.Millisecond)

	case "save":
		if len(args) != 1 {
			return fmt.Errorf("usage: save <name>")
		}
		st, err := repl.box(args[0])
		if err != nil {
			return err
		}
		rev, err := repl.store.Put(args[0], st)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s rev %s\n", args[0], rev)

	case "load":
		if len(args) != 1 {
			return fmt.Errorf("usage: load <name>")
		}
		st, err := repl.store.Get(args[0])
		if err != nil {
			return err
		}
		repl.boxes[args[0]] = st
		fmt.Printf("%s = %q (ops=%d)\n", args[0], st.Value(), st.Len())

	case "revs":
		if len(args) != 1 {
			return fmt.Errorf("usage: revs <name>")
		}
		revs, err := repl.store.Revisions(args[0])
		if err != nil {
			return err
		}
		for _, rev := range revs {
			fmt.Println(rev)
		}

	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func main() {
	dir := "statebox.db"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	table := statebox.NewOpTable[string]()
	table.Define("upper", strings.ToUpper)
	table.Define("lower", strings.ToLower)
	table.Define("trim", strings.TrimSpace)
	reg := statebox.DefaultRegistry(table)

	logger := utils.NewDefaultLogger(slog.LevelWarn)
	store, err := boxstore.Open(dir, reg, boxstore.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "◌ ",
		HistoryFile:     ".statebox_cmd_log.txt",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	repl := &REPL{
		boxes: make(map[string]*statebox.Statebox[string]),
		table: table,
		store: store,
		rl:    rl,
	}
	for {
		line, err := repl.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		}
		line = strings.TrimSpace(line)
		if line == "exit" || line == "quit" {
			break
		}
		if err := repl.run(line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

package ccli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rostedt/ccli/keys"
	"github.com/rostedt/ccli/registry"
)

// newTestEditor builds an Editor over in-memory endpoints. Since input
// is not an *os.File, New never touches raw mode, so these run without
// a real terminal.
func newTestEditor(t *testing.T, input string) (*Editor, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	ed, err := New("$ ", strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ed, &out
}

func TestRunUnknownCommandEchoesMessage(t *testing.T) {
	ed, out := newTestEditor(t, "bogus\rexit\r")
	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Command not found: bogus") {
		t.Errorf("expected unknown-command message in output, got %q", out.String())
	}
}

func TestRunExecutesRegisteredCommand(t *testing.T) {
	ed, out := newTestEditor(t, "greet\rexit\r")
	var ran bool
	ed.RegisterCommand("greet", func(name, line string, data any, argv []string) (int, error) {
		ran = true
		ed.Printf("hi\n")
		return 0, nil
	}, nil)

	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran {
		t.Error("expected greet to run")
	}
	if !strings.Contains(out.String(), "hi") {
		t.Errorf("expected command output to be echoed, got %q", out.String())
	}
}

func TestRunEndOfInputTerminatesCleanly(t *testing.T) {
	ed, _ := newTestEditor(t, "")
	if err := ed.Run(); err != nil {
		t.Fatalf("expected clean termination on empty input, got %v", err)
	}
}

func TestRunAliasExpansionRecordsHistory(t *testing.T) {
	ed, _ := newTestEditor(t, "ll\rexit\r")
	var seenArgv []string
	ed.RegisterCommand("ls", func(name, line string, data any, argv []string) (int, error) {
		seenArgv = argv
		return 0, nil
	}, nil)
	ed.SetAlias("ll", "ls -l")

	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seenArgv) != 2 || seenArgv[0] != "ls" || seenArgv[1] != "-l" {
		t.Errorf("expected alias to expand to 'ls -l', got %v", seenArgv)
	}
	if line, ok := ed.HistoryAt(2); !ok || line != "ll" {
		t.Errorf("expected the unexpanded alias invocation in history, got %q ok=%v", line, ok)
	}
}

func TestRunChainedCommandsExecuteInOrder(t *testing.T) {
	ed, _ := newTestEditor(t, "first; second\rexit\r")
	var ran []string
	ed.RegisterCommand("first", func(name, line string, data any, argv []string) (int, error) {
		ran = append(ran, "first")
		return 0, nil
	}, nil)
	ed.RegisterCommand("second", func(name, line string, data any, argv []string) (int, error) {
		ran = append(ran, "second")
		return 0, nil
	}, nil)
	ed.SetChainDelimiter(";")

	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ran) != 2 || ran[0] != "first" || ran[1] != "second" {
		t.Errorf("expected both statements to run in order, got %v", ran)
	}
}

func TestRunBackslashContinuationJoinsLines(t *testing.T) {
	ed, _ := newTestEditor(t, "echo one \\\rtwo\rexit\r")
	var seenArgv []string
	ed.RegisterCommand("echo", func(name, line string, data any, argv []string) (int, error) {
		seenArgv = argv
		return 0, nil
	}, nil)

	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seenArgv) != 3 || seenArgv[1] != "one" || seenArgv[2] != "two" {
		t.Errorf("expected the continued line to be joined into one submission, got %v", seenArgv)
	}
}

func TestRunTabCompletesUniqueCommand(t *testing.T) {
	ed, out := newTestEditor(t, "hel\texit\rexit\r")
	ed.RegisterCommand("hello", func(name, line string, data any, argv []string) (int, error) {
		return 0, nil
	}, nil)

	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// "hel" + Tab should insert "lo " leaving "hello " on the line; the
	// refresh writes the full completed line to the surface at least
	// once.
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("expected completed command text in output, got %q", out.String())
	}
}

func TestRunTabOnAlreadyCompleteWordStillInsertsDelimiter(t *testing.T) {
	ed, out := newTestEditor(t, "hello\thello\rexit\r")
	var gotArgv []string
	ed.RegisterCommand("hello", func(name, line string, data any, argv []string) (int, error) {
		gotArgv = argv
		return 0, nil
	}, nil)

	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The buffer already spelled out the sole candidate before Tab, so
	// completion has no suffix to insert; Tab should still append the
	// delimiter, leaving "hello " followed by the typed "hello" as two
	// distinct words rather than "hellohello".
	if len(gotArgv) != 2 || gotArgv[0] != "hello" || gotArgv[1] != "hello" {
		t.Errorf("expected Tab to separate the two words, got %v (output %q)", gotArgv, out.String())
	}
}

func TestRunRegisteredCommandTableDispatchesToLeaf(t *testing.T) {
	ed, _ := newTestEditor(t, "config set x y\rexit\r")
	var gotArgv []string
	root := &registry.CommandNode{
		Subcommands: []*registry.CommandNode{
			{
				Name: "config",
				Subcommands: []*registry.CommandNode{
					{
						Name: "set",
						Run: func(name, line string, data any, argv []string) (int, error) {
							gotArgv = argv
							return 0, nil
						},
					},
				},
			},
		},
	}
	if err := ed.RegisterCommandTable(root); err != nil {
		t.Fatalf("RegisterCommandTable: %v", err)
	}
	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(gotArgv) != 3 || gotArgv[0] != "set" || gotArgv[1] != "x" {
		t.Errorf("expected the leaf handler to see argv starting at its own name, got %v", gotArgv)
	}
}

func TestRunInterruptEndsLoopByDefault(t *testing.T) {
	ed, out := newTestEditor(t, "\x03")
	if err := ed.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "^C") {
		t.Errorf("expected the default interrupt message, got %q", out.String())
	}
}

func TestExecuteOutsideLoopDoesNotRequireRun(t *testing.T) {
	ed, _ := newTestEditor(t, "")
	var ran bool
	ed.RegisterCommand("noop", func(name, line string, data any, argv []string) (int, error) {
		ran = true
		return 0, nil
	}, nil)
	out := ed.Execute("noop", true)
	if out.RC != 0 || !ran {
		t.Errorf("expected Execute to run the command directly, rc=%d ran=%v", out.RC, ran)
	}
	if line, ok := ed.HistoryAt(1); !ok || line != "noop" {
		t.Errorf("expected Execute(record=true) to update history, got %q ok=%v", line, ok)
	}
}

func TestSaveAndLoadHistoryRoundTrip(t *testing.T) {
	ed, _ := newTestEditor(t, "")
	ed.Execute("first", true)
	ed.Execute("second", true)

	var buf bytes.Buffer
	if err := ed.SaveHistoryTo(&buf); err != nil {
		t.Fatalf("SaveHistoryTo: %v", err)
	}

	ed2, _ := newTestEditor(t, "")
	if err := ed2.LoadHistoryFrom(&buf); err != nil {
		t.Fatalf("LoadHistoryFrom: %v", err)
	}
	if line, ok := ed2.HistoryAt(1); !ok || line != "second" {
		t.Errorf("expected most recent entry 'second', got %q ok=%v", line, ok)
	}
	if line, ok := ed2.HistoryAt(2); !ok || line != "first" {
		t.Errorf("expected oldest entry 'first', got %q ok=%v", line, ok)
	}
}

func TestReverseSearchInterruptResetsBuffer(t *testing.T) {
	ed, _ := newTestEditor(t, "x\x03")
	ed.RegisterCommand("xyz", func(name, line string, data any, argv []string) (int, error) {
		return 0, nil
	}, nil)
	ed.Execute("xyz", true)
	ed.buf.InsertString("stale")

	done, err := ed.dispatchIntent(keys.Event{Intent: keys.ReverseSearch})
	if err != nil {
		t.Fatalf("dispatchIntent: %v", err)
	}
	if done {
		t.Fatal("expected the loop to continue after an aborted search")
	}
	if ed.buf.Text() != "" {
		t.Errorf("expected the buffer to be empty after aborting a reverse search, got %q", ed.buf.Text())
	}
}

func TestInsertAtCallbackAPI(t *testing.T) {
	ed, _ := newTestEditor(t, "")
	ed.InsertAt("hello", -1)
	if ed.buf.Text() != "hello" {
		t.Fatalf("expected buffer to contain the inserted text, got %q", ed.buf.Text())
	}
	ed.InsertAt("!", 5)
	if ed.buf.Text() != "hello!" {
		t.Errorf("expected append at end, got %q", ed.buf.Text())
	}
	ed.ClearBuffer()
	if ed.buf.Text() != "" {
		t.Errorf("expected ClearBuffer to empty the line, got %q", ed.buf.Text())
	}
}

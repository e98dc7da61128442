package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	arg   string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Search(ctx context.Context, term string) error {
	f.calls = append(f.calls, "search")
	f.arg = term
	return nil
}
func (f *fakeExec) Page(ctx context.Context, arg string) error {
	f.calls = append(f.calls, "page")
	f.arg = arg
	return nil
}
func (f *fakeExec) PageSize(ctx context.Context, arg string) error {
	f.calls = append(f.calls, "pagesize")
	f.arg = arg
	return nil
}
func (f *fakeExec) Lookup(ctx context.Context, dni string) error {
	f.calls = append(f.calls, "lookup")
	f.arg = dni
	return nil
}
func (f *fakeExec) AddRecord(ctx context.Context) error {
	f.calls = append(f.calls, "add")
	return nil
}
func (f *fakeExec) EditRecord(ctx context.Context) error {
	f.calls = append(f.calls, "edit")
	return nil
}
func (f *fakeExec) DeleteRecord(ctx context.Context) error {
	f.calls = append(f.calls, "delete")
	return nil
}
func (f *fakeExec) Tokens(ctx context.Context) error { f.calls = append(f.calls, "tokens"); return nil }
func (f *fakeExec) AddToken(ctx context.Context) error {
	f.calls = append(f.calls, "tokenadd")
	return nil
}
func (f *fakeExec) DeleteToken(ctx context.Context) error {
	f.calls = append(f.calls, "tokendel")
	return nil
}
func (f *fakeExec) ToggleToken(ctx context.Context) error {
	f.calls = append(f.calls, "tokentoggle")
	return nil
}
func (f *fakeExec) ShowConfig(ctx context.Context) error {
	f.calls = append(f.calls, "config")
	return nil
}
func (f *fakeExec) SetToken(ctx context.Context) error {
	f.calls = append(f.calls, "settoken")
	return nil
}
func (f *fakeExec) Backup(ctx context.Context) error {
	f.calls = append(f.calls, "backup")
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"search garcia lopez",
		"list",
		"page 3",
		"lookup 40123456",
		"tokens",
		"backup",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "search", "list", "page", "lookup", "tokens", "backup"}
	if len(exec.calls) < len(wantOrder) {
		t.Fatalf("few calls: %+v", exec.calls)
	}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_SearchJoinsArgs(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("search garcia   lopez\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if exec.arg != "garcia lopez" {
		t.Fatalf("search term: got %q, want %q", exec.arg, "garcia lopez")
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("page\npagesize\nlookup\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

// Package interactive provides the interactive command-line interface
// for the power daemon.
package interactive

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kr/pretty"
	"github.com/powerpolicy/powermgr-go/pkg/discovery"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/powerpolicy/powermgr-go/pkg/service"
)

// Shell handles interactive mode for powerd.
type Shell struct {
	svc *service.PowerService
	rl  *readline.Instance
	out io.Writer

	// pid of the shell process; shell-created locks are owned by it.
	pid int32

	// Locks created from the shell, by name.
	locks map[string]*remote.Token

	// PeerTimeout bounds the peers command.
	PeerTimeout time.Duration
}

// New creates a shell reading from the terminal.
func New(svc *service.PowerService) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "power> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s := newShell(svc, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(svc *service.PowerService, out io.Writer) *Shell {
	return &Shell{
		svc:         svc,
		out:         out,
		pid:         int32(os.Getpid()),
		locks:       make(map[string]*remote.Token),
		PeerTimeout: 3 * time.Second,
	}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop. cancel is called when the user
// quits.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
		if s.Execute(ctx, line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It reports true when the user asked to
// quit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "state", "st":
		s.cmdState()
	case "wakeup":
		s.cmdWakeup(args)
	case "suspend":
		s.cmdSuspend(args)
	case "forcesuspend":
		s.cmdForceSuspend()
	case "refresh":
		s.cmdRefresh(args)
	case "timeout":
		s.cmdTimeout(args)
	case "displayoff":
		s.cmdDisplayOff(args)
	case "sleeptime":
		s.cmdSleepTime(args)
	case "lock":
		s.cmdLock(args)
	case "proxylock":
		s.cmdProxyLock(args)
	case "worksource":
		s.cmdWorkSource(args)
	case "proximity":
		s.cmdProximity(args)
	case "dump":
		fmt.Fprintln(s.out, s.svc.Dump())
	case "sources":
		s.cmdSources()
	case "peers":
		s.cmdPeers(ctx)
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Power Commands:
  State:
    state                        - Show power state and timeouts
    wakeup [type] [details]      - Wake up the device (default APPLICATION)
    suspend [type] [-i]          - Suspend the device (-i: immediately)
    forcesuspend                 - Enter SLEEP now
    refresh [type]               - Report user activity (default SOFTWARE)
    timeout -o <ms> | -r         - Override or restore the display-off time
    displayoff <ms>              - Set and persist the display-off time
    sleeptime <ms>               - Set and persist the sleep time

  Running Locks:
    lock create <name> <type> [pid] [uid]
    lock on <name> [timeout-ms]  - Enable a lock
    lock off <name>              - Disable a lock
    lock release <name>          - Remove a lock
    lock kill <name>             - Simulate death of the owning client
    lock list                    - List held SCREEN and scene locks
    proxylock -p <pid> <uid>     - Suppress the locks of a process
    proxylock -u <pid> <uid>     - Restore the locks of a process
    proxylock -r                 - Drop every proxy
    worksource <name> [uid=bundle ...]
    proximity close|away         - Feed a proximity reading

  Diagnostics:
    dump                         - Dump both components
    sources                      - Show the suspend and wakeup tables
    peers                        - Browse for other daemons

  Other:
    help                         - Show this help
    quit                         - Exit`)
}

func (s *Shell) cmdState() {
	snap := s.svc.Snapshot()
	fmt.Fprintln(s.out, "\nPower Status")
	fmt.Fprintln(s.out, "-------------------------------------------")
	fmt.Fprintf(s.out, "  State:          %s (%s)\n", snap.State, snap.Reason)
	fmt.Fprintf(s.out, "  Display:        %s\n", snap.Display)
	fmt.Fprintf(s.out, "  Display off:    %d ms\n", snap.DisplayOffTime)
	fmt.Fprintf(s.out, "  Sleep:          %d ms\n", snap.SleepTime)
	fmt.Fprintf(s.out, "  Service:        %s\n", s.svc.State())
	fmt.Fprintln(s.out, "-------------------------------------------")
}

func (s *Shell) cmdWakeup(args []string) {
	typ := model.WakeupApplication
	if len(args) > 0 {
		t, ok := parseWakeup(args[0])
		if !ok {
			fmt.Fprintf(s.out, "Unknown wakeup type: %s\n", args[0])
			return
		}
		typ = t
	}
	details := "shell"
	if len(args) > 1 {
		details = strings.Join(args[1:], " ")
	}
	if err := s.svc.WakeupDevice(s.pid, typ, details, "powerd-shell"); err != nil {
		fmt.Fprintf(s.out, "Wakeup failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Wakeup %s: state %s\n", typ, s.svc.PowerState())
}

func (s *Shell) cmdSuspend(args []string) {
	typ := model.SuspendApplication
	immed := false
	for _, a := range args {
		if a == "-i" {
			immed = true
			continue
		}
		t, ok := parseSuspend(a)
		if !ok {
			fmt.Fprintf(s.out, "Unknown suspend type: %s\n", a)
			return
		}
		typ = t
	}
	if err := s.svc.SuspendDevice(s.pid, typ, immed); err != nil {
		fmt.Fprintf(s.out, "Suspend failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Suspend %s: state %s\n", typ, s.svc.PowerState())
}

func (s *Shell) cmdForceSuspend() {
	if !s.svc.ForceSuspendDevice(s.pid) {
		fmt.Fprintln(s.out, "Force suspend refused")
		return
	}
	fmt.Fprintf(s.out, "State %s\n", s.svc.PowerState())
}

func (s *Shell) cmdRefresh(args []string) {
	typ := model.UserActivitySoftware
	if len(args) > 0 {
		t, ok := parseActivity(args[0])
		if !ok {
			fmt.Fprintf(s.out, "Unknown activity type: %s\n", args[0])
			return
		}
		typ = t
	}
	if err := s.svc.RefreshActivity(s.pid, typ, true); err != nil {
		fmt.Fprintf(s.out, "Refresh failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Refreshed (%s)\n", typ)
}

func (s *Shell) cmdTimeout(args []string) {
	switch {
	case len(args) == 2 && args[0] == "-o":
		ms, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || ms <= 0 {
			fmt.Fprintf(s.out, "Invalid timeout: %s\n", args[1])
			return
		}
		if !s.svc.OverrideScreenOffTime(ms) {
			fmt.Fprintln(s.out, "Override refused")
			return
		}
		fmt.Fprintf(s.out, "Display-off time overridden to %d ms\n", ms)
	case len(args) == 1 && args[0] == "-r":
		if !s.svc.RestoreScreenOffTime() {
			fmt.Fprintln(s.out, "No override active")
			return
		}
		fmt.Fprintln(s.out, "Display-off time restored")
	default:
		fmt.Fprintln(s.out, "Usage: timeout -o <ms> | timeout -r")
	}
}

func (s *Shell) cmdDisplayOff(args []string) {
	ms, ok := s.parseMs(args, "displayoff")
	if !ok {
		return
	}
	if err := s.svc.SetDisplayOffTime(ms); err != nil {
		fmt.Fprintf(s.out, "Display-off time set but not persisted: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Display-off time set to %d ms\n", ms)
}

func (s *Shell) cmdSleepTime(args []string) {
	ms, ok := s.parseMs(args, "sleeptime")
	if !ok {
		return
	}
	if err := s.svc.SetSleepTime(ms); err != nil {
		fmt.Fprintf(s.out, "Sleep time set but not persisted: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Sleep time set to %d ms\n", ms)
}

func (s *Shell) parseMs(args []string, cmd string) (int64, bool) {
	if len(args) != 1 {
		fmt.Fprintf(s.out, "Usage: %s <ms>\n", cmd)
		return 0, false
	}
	ms, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || ms <= 0 {
		fmt.Fprintf(s.out, "Invalid value: %s\n", args[0])
		return 0, false
	}
	return ms, true
}

func (s *Shell) cmdLock(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: lock create|on|off|release|kill|list ...")
		return
	}
	sub, rest := args[0], args[1:]
	if sub == "list" {
		s.cmdLockList()
		return
	}
	if sub == "create" {
		s.cmdLockCreate(rest)
		return
	}
	if len(rest) == 0 {
		fmt.Fprintf(s.out, "Usage: lock %s <name>\n", sub)
		return
	}
	name := rest[0]
	tok, ok := s.locks[name]
	if !ok {
		fmt.Fprintf(s.out, "No shell lock named %s\n", name)
		return
	}

	switch sub {
	case "on":
		timeout := int32(-1)
		if len(rest) > 1 {
			v, err := strconv.ParseInt(rest[1], 10, 32)
			if err != nil {
				fmt.Fprintf(s.out, "Invalid timeout: %s\n", rest[1])
				return
			}
			timeout = int32(v)
		}
		s.report("lock on", name, s.svc.Lock(tok, timeout))
	case "off":
		s.report("lock off", name, s.svc.UnLock(tok))
	case "release":
		ok := s.svc.ReleaseLock(tok)
		if ok {
			delete(s.locks, name)
		}
		s.report("lock release", name, ok)
	case "kill":
		delete(s.locks, name)
		tok.Kill()
		fmt.Fprintf(s.out, "Owner of %s died\n", name)
	default:
		fmt.Fprintf(s.out, "Unknown lock command: %s\n", sub)
	}
}

func (s *Shell) cmdLockCreate(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: lock create <name> <type> [pid] [uid]")
		return
	}
	name := args[0]
	if _, exists := s.locks[name]; exists {
		fmt.Fprintf(s.out, "Lock %s already exists\n", name)
		return
	}
	typ, ok := parseLockType(args[1])
	if !ok {
		fmt.Fprintf(s.out, "Unknown lock type: %s\n", args[1])
		return
	}
	pid, uid := s.pid, int32(os.Getuid())
	if len(args) > 2 {
		v, err := strconv.ParseInt(args[2], 10, 32)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid pid: %s\n", args[2])
			return
		}
		pid = int32(v)
	}
	if len(args) > 3 {
		v, err := strconv.ParseInt(args[3], 10, 32)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid uid: %s\n", args[3])
			return
		}
		uid = int32(v)
	}

	// The token belongs to the shell process so the watcher keeps it alive;
	// pid and uid on the param are what proxying matches.
	tok := remote.NewToken(s.pid, uid, name)
	param := model.RunningLockParam{Name: name, Type: typ, TimeoutMs: -1, Pid: pid, Uid: uid}
	if err := s.svc.CreateRunningLock(tok, param); err != nil {
		fmt.Fprintf(s.out, "Create failed: %v\n", err)
		return
	}
	s.locks[name] = tok
	fmt.Fprintf(s.out, "Created %s lock %s (pid %d, uid %d)\n", typ, name, pid, uid)
}

func (s *Shell) cmdLockList() {
	held := s.svc.QueryRunningLockLists()
	names := make([]string, 0, len(held))
	for name := range held {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintln(s.out, "No locks held")
	}
	for _, name := range names {
		info := held[name]
		fmt.Fprintf(s.out, "  %-24s %s\n", name, info.Type)
	}

	shell := make([]string, 0, len(s.locks))
	for name := range s.locks {
		shell = append(shell, name)
	}
	sort.Strings(shell)
	for _, name := range shell {
		fmt.Fprintf(s.out, "  shell: %-17s used=%t\n", name, s.svc.IsUsed(s.locks[name]))
	}
}

func (s *Shell) cmdProxyLock(args []string) {
	if len(args) == 1 && args[0] == "-r" {
		s.svc.ResetRunningLocks()
		fmt.Fprintln(s.out, "All proxies dropped")
		return
	}
	if len(args) != 3 || (args[0] != "-p" && args[0] != "-u") {
		fmt.Fprintln(s.out, "Usage: proxylock -p|-u <pid> <uid> | proxylock -r")
		return
	}
	pid, err1 := strconv.ParseInt(args[1], 10, 32)
	uid, err2 := strconv.ParseInt(args[2], 10, 32)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(s.out, "pid and uid must be integers")
		return
	}
	proxied := args[0] == "-p"
	s.report("proxylock", fmt.Sprintf("%d/%d", pid, uid), s.svc.ProxyRunningLock(proxied, int32(pid), int32(uid)))
}

func (s *Shell) cmdWorkSource(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: worksource <name> [uid=bundle ...]")
		return
	}
	tok, ok := s.locks[args[0]]
	if !ok {
		fmt.Fprintf(s.out, "No shell lock named %s\n", args[0])
		return
	}
	sources := make(map[int32]string, len(args)-1)
	for _, pair := range args[1:] {
		uidStr, bundle, _ := strings.Cut(pair, "=")
		uid, err := strconv.ParseInt(uidStr, 10, 32)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid work source: %s\n", pair)
			return
		}
		sources[int32(uid)] = bundle
	}
	s.report("worksource", args[0], s.svc.UpdateWorkSource(tok, sources))
}

func (s *Shell) cmdProximity(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: proximity close|away")
		return
	}
	var status runninglock.ProximityStatus
	switch strings.ToLower(args[0]) {
	case "close":
		status = runninglock.ProximityClose
	case "away":
		status = runninglock.ProximityAway
	default:
		fmt.Fprintf(s.out, "Unknown proximity status: %s\n", args[0])
		return
	}
	s.report("proximity", status.String(), s.svc.SetProximity(status))
}

func (s *Shell) cmdSources() {
	suspend, wakeup := s.svc.Sources()
	fmt.Fprintln(s.out, "Suspend sources:")
	pretty.Fprintf(s.out, "%# v\n", suspend.Sources)
	fmt.Fprintln(s.out, "Wakeup sources:")
	pretty.Fprintf(s.out, "%# v\n", wakeup.Sources)
}

func (s *Shell) cmdPeers(ctx context.Context) {
	peers, err := discovery.Find(ctx, discovery.BrowserConfig{Timeout: s.PeerTimeout})
	if err != nil {
		fmt.Fprintf(s.out, "Browse failed: %v\n", err)
		return
	}
	if len(peers) == 0 {
		fmt.Fprintln(s.out, "No daemons found")
		return
	}
	for _, p := range peers {
		fmt.Fprintf(s.out, "  %-24s %-10s %s:%d%s\n", p.Instance, p.State, p.Host, p.Port, p.Path)
	}
}

func (s *Shell) report(op, target string, ok bool) {
	if ok {
		fmt.Fprintf(s.out, "%s %s: ok\n", op, target)
		return
	}
	fmt.Fprintf(s.out, "%s %s: failed\n", op, target)
}

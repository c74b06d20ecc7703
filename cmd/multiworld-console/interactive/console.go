// Package interactive provides the interactive command-line interface
// for the multiworld console.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/multiworld-protocol/multiworld-go/pkg/client"
	"github.com/multiworld-protocol/multiworld-go/pkg/session"
	"github.com/multiworld-protocol/multiworld-go/pkg/subscription"
	"github.com/multiworld-protocol/multiworld-go/pkg/wire"
)

// Console handles interactive mode for multiworld-console. The client
// is single-threaded by contract, so every command runs on the tick
// goroutine: the readline loop only parses input and hands closures to
// the tick loop through a channel.
type Console struct {
	c    *client.Client
	rl   *readline.Instance
	cmds chan func()
}

// New creates an interactive console around a client.
func New(c *client.Client) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "multiworld> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	con := &Console{
		c:    c,
		rl:   rl,
		cmds: make(chan func(), 16),
	}

	c.OnStateChanged(func(ch subscription.StateChange) {
		if ch.Reason != "" {
			fmt.Fprintf(rl.Stdout(), "[session] %s -> %s (%s)\n", ch.Old, ch.New, ch.Reason)
			return
		}
		fmt.Fprintf(rl.Stdout(), "[session] %s -> %s\n", ch.Old, ch.New)
	})
	c.OnItemReceived(func(item session.Item, index int) {
		name := item.Name
		if name == "" {
			name = fmt.Sprintf("item %d", item.ID)
		}
		tag := ""
		if item.Classified {
			tag = " (trap)"
		}
		fmt.Fprintf(rl.Stdout(), "[item %d] %s%s from player %d\n", index, name, tag, item.Player)
	})
	c.OnPrint(func(msg subscription.Message) {
		fmt.Fprintf(rl.Stdout(), "[server] %s\n", msg.Text)
	})
	c.OnLocationsConfirmed(func(ids []int64) {
		fmt.Fprintf(rl.Stdout(), "[checks] confirmed %v\n", ids)
	})

	return con, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (con *Console) Stdout() io.Writer {
	return con.rl.Stdout()
}

// RunTicks drives the client until the context ends. It owns the tick
// goroutine; queued commands execute here, between ticks.
func (con *Console) RunTicks(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			con.c.Shutdown()
			return
		case cmd := <-con.cmds:
			cmd()
		case <-ticker.C:
			con.c.Tick()
		}
	}
}

// Run starts the interactive command loop. It returns when the user
// exits or the context ends.
func (con *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer con.rl.Close()

	con.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := con.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(con.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			con.printHelp()

		case "connect", "c":
			con.cmdConnect(args)

		case "disconnect", "d":
			con.do(func() {
				if err := con.c.Disconnect(); err != nil {
					fmt.Fprintf(con.rl.Stdout(), "disconnect: %v\n", err)
				}
			})

		case "status", "s":
			con.do(con.cmdStatus)

		case "check":
			con.cmdCheck(args)

		case "chat", "say":
			con.cmdChat(args)

		case "hint":
			con.cmdHint(args)

		case "goal":
			con.do(func() {
				if err := con.c.UpdateStatus(wire.StatusGoal); err != nil {
					fmt.Fprintf(con.rl.Stdout(), "goal: %v\n", err)
				}
			})

		case "items":
			con.do(con.cmdItems)

		case "locations", "locs":
			con.do(con.cmdLocations)

		case "room":
			con.do(con.cmdRoom)

		case "quit", "exit", "q":
			fmt.Fprintln(con.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(con.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

// do queues a closure for the tick goroutine.
func (con *Console) do(f func()) {
	con.cmds <- f
}

func (con *Console) printHelp() {
	fmt.Fprintln(con.rl.Stdout(), `
Multiworld Console Commands:
  Connection:
    connect [host port] [slot] [password] - Connect (defaults from config)
    disconnect         - Tear the connection down
    status             - Show connection and session state

  Play:
    check <id> [id...] - Report completed location checks
    chat <text>        - Send a chat message
    hint <id>          - Request a hint for a location
    goal               - Report goal completion

  Inspection:
    items              - Show the received-item log
    locations          - Show the checked-location set
    room               - Show the room snapshot

  General:
    help               - Show this help
    quit               - Exit`)
}

func (con *Console) cmdConnect(args []string) {
	host := ""
	port := 0
	slot := ""
	password := ""

	if len(args) >= 2 {
		p, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(con.rl.Stdout(), "invalid port %q\n", args[1])
			return
		}
		host, port = args[0], p
		args = args[2:]
	}
	if len(args) >= 1 {
		slot = args[0]
	}
	if len(args) >= 2 {
		password = args[1]
	}

	con.do(func() {
		if err := con.c.Connect(host, port, slot, password); err != nil {
			fmt.Fprintf(con.rl.Stdout(), "connect: %v\n", err)
			return
		}
		fmt.Fprintln(con.rl.Stdout(), "connecting...")
	})
}

func (con *Console) cmdCheck(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(con.rl.Stdout(), "usage: check <id> [id...]")
		return
	}
	var ids []int64
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			fmt.Fprintf(con.rl.Stdout(), "invalid location id %q\n", a)
			return
		}
		ids = append(ids, id)
	}
	con.do(func() {
		if err := con.c.ReportLocations(ids); err != nil {
			fmt.Fprintf(con.rl.Stdout(), "check: %v\n", err)
		}
	})
}

func (con *Console) cmdChat(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(con.rl.Stdout(), "usage: chat <text>")
		return
	}
	text := strings.Join(args, " ")
	con.do(func() {
		if err := con.c.SendChat(text); err != nil {
			fmt.Fprintf(con.rl.Stdout(), "chat: %v\n", err)
		}
	})
}

func (con *Console) cmdHint(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(con.rl.Stdout(), "usage: hint <location-id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(con.rl.Stdout(), "invalid location id %q\n", args[0])
		return
	}
	con.do(func() {
		if err := con.c.RequestHint(id); err != nil {
			fmt.Fprintf(con.rl.Stdout(), "hint: %v\n", err)
		}
	})
}

func (con *Console) cmdStatus() {
	out := con.rl.Stdout()
	fmt.Fprintf(out, "connection: %s\n", con.c.ConnectionState())
	fmt.Fprintf(out, "session:    %s\n", con.c.SessionState())
	fmt.Fprintf(out, "uuid:       %s\n", con.c.UUID())
	if con.c.Connected() {
		fmt.Fprintf(out, "slot:       %d\n", con.c.Slot())
	}
	stats := con.c.Stats()
	fmt.Fprintf(out, "frames:     %d sent, %d received (%d connect attempts)\n",
		stats.FramesSent, stats.FramesReceived, stats.ConnectAttempts)
}

func (con *Console) cmdItems() {
	out := con.rl.Stdout()
	items := con.c.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "no items received")
		return
	}
	for i, item := range items {
		name := item.Name
		if name == "" {
			name = fmt.Sprintf("item %d", item.ID)
		}
		fmt.Fprintf(out, "%4d  %s (player %d, location %d)\n", i, name, item.Player, item.Location)
	}
}

func (con *Console) cmdLocations() {
	out := con.rl.Stdout()
	locs := con.c.CheckedLocations()
	if len(locs) == 0 {
		fmt.Fprintln(out, "no locations checked")
		return
	}
	for _, id := range locs {
		if name, ok := con.c.LocationName(id); ok {
			fmt.Fprintf(out, "%8d  %s\n", id, name)
			continue
		}
		fmt.Fprintf(out, "%8d\n", id)
	}
}

func (con *Console) cmdRoom() {
	out := con.rl.Stdout()
	info, ok := con.c.RoomInfo()
	if !ok {
		fmt.Fprintln(out, "no room info received")
		return
	}
	fmt.Fprintf(out, "seed:        %s\n", info.SeedName)
	fmt.Fprintf(out, "password:    %v\n", info.PasswordRequired)
	fmt.Fprintf(out, "hint cost:   %d\n", info.HintCost)
	fmt.Fprintf(out, "check score: %d\n", info.LocationCheckPoints)
	fmt.Fprintf(out, "version:     %d.%d.%d\n",
		info.Version.Major, info.Version.Minor, info.Version.Build)
}

// Controller simulator: impersonates the traffic-signal firmware on a
// serial device. It emits STATE: lines on a ticker, cycling the green
// phase around the intersections, and honors the same command vocabulary
// as the real controller. Use -virtual to run against the bridge over a
// socat PTY pair when no hardware is attached.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"SignalBridge/internal/device"
	"SignalBridge/internal/parser"
	"SignalBridge/internal/util"
)

func main() {
	util.SetupLogger()

	dev := flag.String("dev", "/tmp/ttySIM0", "serial device the simulator opens")
	peer := flag.String("peer", "/tmp/ttySIM1", "peer PTY link for the bridge (with -virtual)")
	baud := flag.Int("baud", 115200, "baud rate")
	interval := flag.Int("interval", 1000, "ms between STATE reports")
	virtual := flag.Bool("virtual", false, "create a socat PTY pair before opening")
	names := flag.String("lights", "NORTH,SW,SE,NW,NE", "comma-separated intersection names")
	flag.Parse()

	if *virtual {
		mgr := util.NewSocatManager()
		if err := mgr.CreatePair(*dev, *peer); err != nil {
			log.Fatalf("create virtual pair: %v", err)
		}
		defer mgr.Cleanup()
		// socat needs a moment to materialize the links
		time.Sleep(500 * time.Millisecond)
		log.Printf("[sim] point the bridge at %s", *peer)
	}

	port, err := device.NewSerialDevice(*dev, *baud)
	if err != nil {
		log.Fatalf("open serial: %v", err)
	}
	defer func() {
		if cerr := port.Close(); cerr != nil {
			log.Printf("warning: close serial err: %v", cerr)
		}
	}()

	sim := newSimulator(strings.Split(*names, ","))
	if len(sim.names) == 0 {
		log.Fatal("no intersection names given")
	}
	go sim.commandLoop(port)

	log.Printf("[sim] reporting on %s every %dms", *dev, *interval)
	tick := time.NewTicker(time.Duration(*interval) * time.Millisecond)
	defer tick.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-stop:
			log.Println("[sim] stopped")
			return
		case <-tick.C:
			line := sim.step()
			if err := port.WriteLine(line); err != nil {
				log.Printf("[sim] write err: %v", err)
			}
		}
	}
}

// simulator models a junction controller: one intersection holds green,
// briefly yellow, then the green moves to the next in the order.
type simulator struct {
	mu     sync.Mutex
	names  []string
	order  []int
	pos    int  // index into order of the intersection holding right of way
	yellow bool // currently in the yellow sub-phase
	paused bool
	delays []int
}

func newSimulator(names []string) *simulator {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToUpper(strings.TrimSpace(n))
		if n != "" {
			cleaned = append(cleaned, n)
		}
	}
	order := make([]int, len(cleaned))
	for i := range order {
		order[i] = i
	}
	return &simulator{names: cleaned, order: order}
}

// step advances the phase machine one tick and returns the STATE line.
func (s *simulator) step() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.paused {
		if s.yellow {
			s.yellow = false
			s.pos = (s.pos + 1) % len(s.order)
		} else {
			s.yellow = true
		}
	}

	active := s.order[s.pos]
	var sb strings.Builder
	sb.WriteString(parser.StatePrefix)
	for i, name := range s.names {
		if i > 0 {
			sb.WriteByte(',')
		}
		red, yel, grn := "1", "0", "0"
		if i == active {
			if s.yellow {
				red, yel, grn = "0", "1", "0"
			} else {
				red, yel, grn = "0", "0", "1"
			}
		}
		fmt.Fprintf(&sb, "%s,%s,%s,%s", name, red, yel, grn)
	}
	return sb.String()
}

// commandLoop reads operator commands from the port and answers the way
// the firmware does.
func (s *simulator) commandLoop(port device.Device) {
	for {
		line, err := port.ReadLine(500 * time.Millisecond)
		if err != nil {
			if err == device.ErrReadTimeout {
				continue
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		log.Printf("[sim] command: %s", line)
		for _, reply := range s.handle(line) {
			if werr := port.WriteLine(reply); werr != nil {
				log.Printf("[sim] reply err: %v", werr)
			}
		}
	}
}

func (s *simulator) handle(cmd string) []string {
	verb, args, _ := strings.Cut(cmd, " ")
	s.mu.Lock()
	defer s.mu.Unlock()

	switch verb {
	case parser.CmdPause:
		s.paused = true
		return []string{"Paused"}
	case parser.CmdResume:
		s.paused = false
		return []string{"Resumed"}
	case parser.CmdStatus:
		return []string{
			fmt.Sprintf("Lights: %s", strings.Join(s.names, ",")),
			fmt.Sprintf("Paused: %v", s.paused),
			fmt.Sprintf("Delays: %v", s.delays),
		}
	case parser.CmdOrder:
		order, err := parseInts(args, len(s.order))
		if err != nil {
			return []string{fmt.Sprintf("Bad order: %v", err)}
		}
		s.order = order
		s.pos = 0
		return []string{"Order updated"}
	case parser.CmdDelay:
		delays, err := parseInts(args, 15)
		if err != nil {
			return []string{fmt.Sprintf("Bad delays: %v", err)}
		}
		s.delays = delays
		return []string{"Delays updated"}
	default:
		return []string{fmt.Sprintf("Unknown command: %s", verb)}
	}
}

func parseInts(args string, want int) ([]int, error) {
	fields := strings.Split(args, ",")
	if len(fields) != want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(fields))
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

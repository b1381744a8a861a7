// Command openqueuectl is the userspace CLI that resolves a port-policy
// name against the process PolicyRegistry and drives a synthetic packet
// generator against the resulting Port. It stands in for the netlink-
// carried CLI the core explicitly does not implement; it exists only to
// exercise the core end-to-end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	pmet "github.com/danushkam/openqueue/metrics/prom"
	"github.com/danushkam/openqueue/policy/priority"
	"github.com/danushkam/openqueue/policy/weighted"
	"github.com/danushkam/openqueue/port"
	"github.com/danushkam/openqueue/registry"
	"github.com/danushkam/openqueue/scheduler"
)

// packet is the synthetic payload the generator offers. prio stands in
// for the original's ip_hdr->tos, size for skb->len.
type packet struct {
	prio uint64
	size uint64
}

func admissionKey(p *packet) uint64 { return p.prio }
func processingKey(p *packet) uint64 { return p.size }

func registerPolicies(reg *registry.Registry[*packet]) {
	_ = reg.Register("priority", priority.NewMyPort[*packet](admissionKey, processingKey))
	_ = reg.Register("weighted", weighted.New(weighted.Config[*packet]{
		Queues: []weighted.QueueSpec{
			{Name: "w1", Capacity: 256},
			{Name: "w2", Capacity: 256},
		},
		Quantum:       1500,
		PacketSize:    func(p *packet) uint64 { return p.size },
		AdmissionKey:  admissionKey,
		ProcessingKey: processingKey,
		Select:        func(p *packet, numQueues int) int { return int(p.prio) % numQueues },
	}))
}

func main() {
	if len(os.Args) < 3 || os.Args[1] != "policy" {
		usage()
		os.Exit(2)
	}
	policyName := os.Args[2]

	fs := flag.NewFlagSet("openqueuectl policy", flag.ExitOnError)
	duration := fs.Duration("duration", 5*time.Second, "how long to run the synthetic generator")
	workers := fs.Int("workers", 4, "number of concurrent generator goroutines")
	httpAddr := fs.String("http", "", "serve Prometheus metrics at addr (empty = disabled)")
	portName := fs.String("name", "cli-port", "port name to construct")
	if err := fs.Parse(os.Args[3:]); err != nil {
		os.Exit(2)
	}

	reg := registry.Global[*packet]()
	registerPolicies(reg)

	prt, err := port.New[*packet](*portName, reg, policyName)
	if err != nil {
		log.Fatalf("openqueuectl: %v", err)
	}

	var metrics *pmet.Adapter
	if *httpAddr != "" {
		metrics = pmet.New(nil, nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", *httpAddr)
			log.Println(http.ListenAndServe(*httpAddr, nil))
		}()
	}

	run(prt, *duration, *workers, metrics)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: openqueuectl policy <name> [-duration D] [-workers N] [-http addr] [-name port-name]")
	fmt.Fprintln(os.Stderr, "  name is resolved against the process PolicyRegistry (built-in: priority, weighted)")
}

// run serializes all Enqueue/Dequeue calls on prt behind mu, per the
// Port's single-writer concurrency model, while workers goroutines
// generate synthetic traffic and one goroutine drains it.
func run(prt *port.Port[*packet], duration time.Duration, workers int, metrics *pmet.Adapter) {
	var mu sync.Mutex
	var admitted, dropped, drained uint64

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	release := func(_ *packet) { atomic.AddUint64(&dropped, 1) }

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				pkt := &packet{prio: uint64(r.Intn(4)), size: uint64(64 + r.Intn(1400))}

				mu.Lock()
				err := scheduler.Enqueue(prt, pkt, release)
				mu.Unlock()
				if err == nil {
					atomic.AddUint64(&admitted, 1)
				}
			}
		}(w)
	}

	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			mu.Lock()
			_, ok := scheduler.Dequeue(prt)
			if metrics != nil {
				metrics.Observe(scheduler.Stats(prt))
			}
			mu.Unlock()
			if ok {
				atomic.AddUint64(&drained, 1)
			} else {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	wg.Wait()
	<-drainDone

	snap := scheduler.Stats(prt)
	fmt.Printf("port=%s queues=%d admitted=%d dropped=%d drained=%d\n",
		snap.PortName, snap.NumQueues, admitted, dropped, drained)
	for _, q := range snap.Queues {
		fmt.Printf("  %-8s cap=%-6d len=%-6d dropped=%-6d total=%d\n",
			q.Name, q.Capacity, q.Length, q.Dropped, q.TotalAdmitted)
	}
}


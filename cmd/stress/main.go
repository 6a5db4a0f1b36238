package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/logpipe"
)

const (
	totalBursts    = 100
	logsPerBurst   = 500
	maxMessageSize = 2000
	numWorkers     = 100
)

const logsDir = "./stress_logs"

var levels = []logpipe.Level{
	logpipe.LevelDebug,
	logpipe.LevelInfo,
	logpipe.LevelWarn,
	logpipe.LevelError,
}

var pipeline *logpipe.Pipeline

func generateRandomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity
func logBurst(burstID int) {
	for i := 0; i < logsPerBurst; i++ {
		level := levels[rand.Intn(len(levels))]
		msgSize := rand.Intn(maxMessageSize) + 10
		msg := generateRandomMessage(msgSize)
		meta := []logpipe.Field{
			logpipe.F("wkr", burstID%numWorkers),
			logpipe.F("bst", burstID),
			logpipe.F("seq", i),
			logpipe.F("rnd", rand.Int63()),
		}
		pipeline.Log(level, msg, meta, false)
	}
}

// worker goroutine function
func worker(burstChan chan int, wg *sync.WaitGroup, completedBursts *atomic.Int64) {
	defer wg.Done()
	for burstID := range burstChan {
		logBurst(burstID)
		completed := completedBursts.Add(1)
		if completed%10 == 0 || completed == totalBursts {
			fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
		}
	}
}

func main() {
	fmt.Println("--- Pipeline Stress Test ---")

	_ = os.RemoveAll(logsDir) // Clean previous run's log directory before starting

	// --- Initialize Pipeline ---
	var err error
	pipeline, err = logpipe.NewBuilder().
		LevelString("debug").
		Name("stress").
		Directory(logsDir).
		BufferSize(10_000).
		FlushThreshold(500).
		FlushInterval(50).
		MaxSizeMB(1). // Force frequent rotation
		MaxGenerations(5).
		EnableConsole(false). // Console off, persistence is the bottleneck under test
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize pipeline: %v\n", err)
		os.Exit(1)
	}
	if err := pipeline.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start pipeline: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pipeline started. Logs will be written to: %s\n", logsDir)

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d logs/burst.\n",
		numWorkers, totalBursts, logsPerBurst)
	fmt.Println("Check log directory size and generation rotation.")
	fmt.Println("Press Ctrl+C to stop early.")

	// --- Setup Workers and Signal Handling ---
	burstChan := make(chan int, numWorkers)
	var wg sync.WaitGroup
	completedBursts := atomic.Int64{}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})

	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping burst generation...")
		close(stopChan)
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(burstChan, &wg, &completedBursts)
	}

	// --- Run Test ---
	startTime := time.Now()
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-stopChan:
			fmt.Println("[Signal Received] Halting burst submission.")
			goto endLoop
		}
	}
endLoop:
	close(burstChan)

	fmt.Println("\nWaiting for workers to finish...")
	wg.Wait()
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		logsPerSec := float64(finalCompleted*logsPerBurst) / duration.Seconds()
		fmt.Printf("Approximate Logs/sec: %.2f\n", logsPerSec)
	}

	// --- Shutdown Pipeline ---
	fmt.Println("Shutting down pipeline (allowing up to 10s)...")
	shutdownTimeout := 10 * time.Second
	if err := pipeline.Shutdown(shutdownTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline shutdown error: %v\n", err)
	} else {
		fmt.Println("Pipeline shutdown complete.")
	}

	// --- Report Counters ---
	stats := pipeline.Stats()
	fmt.Printf("Lines persisted: %d, dropped: %d, flushes: %d, rotations: %d\n",
		stats.LinesProcessed, stats.DroppedLines, stats.TotalFlushes, stats.TotalRotations)
	fmt.Printf("Check log files in '%s'.\n", logsDir)
}

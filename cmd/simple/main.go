package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lixenwraith/logpipe"
	"github.com/lixenwraith/logpipe/redact"
)

const configFile = "simple_config.toml"

// Example TOML content
var tomlContent = `
# Example simple_config.toml
[logpipe]
  level = 0 # Debug
  name = "simple"
  directory = "./simple_logs"
  extension = "log"
  buffer_size = 1024
  flush_threshold = 10
  flush_interval_ms = 100
  max_size_kb = 512
  max_generations = 3
  enable_console = true
  console_target = "stdout"
`

func main() {
	fmt.Println("--- Simple Pipeline Example ---")

	// --- Setup Config ---
	// Create dummy config file
	err := os.WriteFile(configFile, []byte(tomlContent), 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
		// Continue with defaults potentially
	} else {
		fmt.Printf("Created dummy config file: %s\n", configFile)
		// defer os.Remove(configFile) // Remove to keep the saved config file
	}

	cfg, err := logpipe.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v. Using defaults.\n", err)
		cfg = logpipe.DefaultConfig()
	}

	// --- Initialize Pipeline ---
	pipeline := logpipe.New()
	if err := pipeline.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize pipeline: %v\n", err)
		os.Exit(1)
	}
	if err := pipeline.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start pipeline: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Pipeline started.")

	// --- Logging ---
	pipeline.Debug("This is a debug message.", logpipe.F("user_id", 123))
	pipeline.Info("Application starting...")
	pipeline.Warn("Potential issue detected.", logpipe.F("threshold", 0.95))
	pipeline.Error("An error occurred!", logpipe.F("code", 500))

	// Automatic redaction: the console shows the address, the file gets a
	// placeholder
	pipeline.Info("Password reset sent to admin@example.com")

	// Explicit markers: real value on console, chosen placeholder on disk
	token := redact.Mark("tok_9f8e7d6c", "[SESSION_TOKEN]")
	pipeline.Info("Session established with " + token.String())

	// Logging from goroutines
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			pipeline.Info("Goroutine started", logpipe.F("id", id))
			time.Sleep(time.Duration(50+id*50) * time.Millisecond)
			pipeline.ErrorTrace("Goroutine finished with trace", logpipe.F("id", id))
		}(i)
	}

	// Wait for goroutines to finish before shutting down
	wg.Wait()
	fmt.Println("Goroutines finished.")

	// --- Read Back ---
	if err := pipeline.ForceFlush(2 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Flush error: %v\n", err)
	}
	fmt.Println("\nMost recent persisted entries (note the redacted values):")
	for _, e := range pipeline.RecentEntries(5) {
		fmt.Printf("  %s [%s] %s\n", e.Level, e.Caller, e.Message)
	}

	// --- Shutdown Pipeline ---
	fmt.Println("\nShutting down pipeline...")
	shutdownTimeout := 2 * time.Second
	if err := pipeline.Shutdown(shutdownTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline shutdown error: %v\n", err)
	} else {
		fmt.Println("Pipeline shutdown complete.")
	}

	fmt.Println("--- Example Finished ---")
	fmt.Printf("Check log files in './simple_logs' and the config '%s'.\n", configFile)
}

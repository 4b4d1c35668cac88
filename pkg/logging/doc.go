// Package logging provides structured logging capabilities for the graph
// compiler and planner.
//
// # Overview
//
// The logging package implements a structured logging system with support for
// multiple output formats, log levels, and contextual information tying log
// lines back to a Network, a compiled ExecutionPlan, or a single operation.
//
// # Features
//
//   - Structured logging: JSON and text formats
//   - Log levels: DEBUG, INFO, WARN, ERROR
//   - Context propagation: network ID, plan ID, operation name
//   - Level filtering: messages below the configured level are dropped
//   - Performance: Minimal overhead for disabled log levels
//   - Thread-safe: Safe for concurrent use
//   - Flexible output: Write to any io.Writer
//
// # Log Levels
//
// The package supports standard log levels:
//
//   - DEBUG: Detailed diagnostic information
//   - INFO: General informational messages
//   - WARN: Warning messages for potential issues
//   - ERROR: Error messages for failures
//
// # Basic Usage
//
//	// Create logger
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Pretty: false,
//	    Output: os.Stdout,
//	})
//
//	// Log messages
//	logger.WithNetworkID("net-123").Info("network compiled")
//
//	logger.WithPlanID("plan-456").Error("compile failed")
//
// # Context Integration
//
// The logger integrates with Go contexts for automatic propagation through a
// call chain:
//
//	ctx = logger.WithContext(ctx)
//	// ... deeper in the call stack ...
//	logging.FromContext(ctx).WithOperation("fetch-user").Debug("running")
//
// # Structured Fields
//
// All log entries support structured fields:
//
//	logger.WithFields(map[string]interface{}{
//	    "inputs":  req.Inputs,
//	    "outputs": req.Outputs,
//	}).Info("compile requested")
//
// # Output Formats
//
// JSON Format (production):
//
//	{
//	  "time": "2024-01-15T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "plan compiled",
//	  "network_id": "net-123",
//	  "plan_id": "plan-456"
//	}
//
// Text Format (development, Pretty: true):
//
//	time=2024-01-15T10:30:00.000Z level=INFO msg="plan compiled" network_id=net-123 plan_id=plan-456
//
// # Configuration
//
// Logger configuration options:
//
//	config := logging.Config{
//	    Level:         "debug",  // Minimum level to log
//	    Output:        os.Stdout,
//	    Pretty:        false,    // false = JSON, true = text
//	    IncludeCaller: true,     // Include file:line
//	}
//
// # Context Helpers
//
//   - WithNetworkID: identifies which Network a log line concerns
//   - WithPlanID: correlates log lines with a compiled ExecutionPlan
//   - WithOperation: identifies which operation a log line concerns
//
// # Thread Safety
//
// All logger operations are thread-safe and can be used concurrently
// from multiple goroutines without additional synchronization.
//
// # Testing
//
// For testing, use a logger with a buffer:
//
//	buf := &bytes.Buffer{}
//	logger := logging.New(logging.Config{Output: buf})
//
//	// Execute code
//	// Verify log output
//	assert.Contains(t, buf.String(), "expected message")
package logging

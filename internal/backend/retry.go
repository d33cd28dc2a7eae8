package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	claudecode "github.com/rokrokss/claude-code-sdk-go"
)

const (
	maxRateLimitRetries = 3
	maxNetworkRetries   = 1
	maxProcessRetries   = 1
	initialBackoff      = 1 * time.Second
	networkRetryDelay   = 2 * time.Second
	processRetryDelay   = 2 * time.Second
)

// executeWithRetry wraps an SDK call with retry logic keyed on error type.
// Rate limits back off exponentially; subprocess and network failures get
// one retry; installation and auth problems fail immediately with guidance.
func executeWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	rateLimitRetries := 0
	networkRetries := 0
	processRetries := 0
	backoff := initialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		switch classifyError(lastErr) {
		case errTypeCLINotFound:
			return errors.New("claude CLI not found, install with: npm install -g @anthropic-ai/claude-code")

		case errTypeRateLimit:
			rateLimitRetries++
			if rateLimitRetries > maxRateLimitRetries {
				return fmt.Errorf("rate limit exceeded after %d retries", maxRateLimitRetries)
			}
			if err := sleepWithContext(ctx, backoff); err != nil {
				return err
			}
			backoff *= 2

		case errTypeConnection:
			networkRetries++
			if networkRetries > maxNetworkRetries {
				return fmt.Errorf("connection to claude CLI failed: %w", lastErr)
			}
			if err := sleepWithContext(ctx, networkRetryDelay); err != nil {
				return err
			}

		case errTypeProcess:
			processRetries++
			if processRetries > maxProcessRetries {
				return fmt.Errorf("claude CLI subprocess failed: %s", processErrorDetail(lastErr))
			}
			if err := sleepWithContext(ctx, processRetryDelay); err != nil {
				return err
			}

		case errTypeNetwork:
			networkRetries++
			if networkRetries > maxNetworkRetries {
				return fmt.Errorf("network error: %w", lastErr)
			}
			if err := sleepWithContext(ctx, networkRetryDelay); err != nil {
				return err
			}

		case errTypeTimeout:
			return errors.New("request timed out")

		default:
			return lastErr
		}
	}
}

type errorType int

const (
	errTypeUnknown errorType = iota
	errTypeCLINotFound
	errTypeRateLimit
	errTypeConnection
	errTypeProcess
	errTypeNetwork
	errTypeTimeout
)

// classifyError maps SDK and network errors to retry categories.
func classifyError(err error) errorType {
	if err == nil {
		return errTypeUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errTypeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return errTypeUnknown
	}

	var cliNotFoundErr *claudecode.CLINotFoundError
	if errors.As(err, &cliNotFoundErr) {
		return errTypeCLINotFound
	}

	var processErr *claudecode.ProcessError
	if errors.As(err, &processErr) {
		return errTypeProcess
	}

	var connectionErr *claudecode.ConnectionError
	if errors.As(err, &connectionErr) {
		return errTypeConnection
	}

	if isNetworkError(err) {
		return errTypeNetwork
	}

	return errTypeUnknown
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func processErrorDetail(err error) string {
	var processErr *claudecode.ProcessError
	if errors.As(err, &processErr) {
		if processErr.Stderr != "" {
			return processErr.Stderr
		}
		if processErr.ExitCode != 0 {
			return fmt.Sprintf("exit code %d", processErr.ExitCode)
		}
	}
	return err.Error()
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

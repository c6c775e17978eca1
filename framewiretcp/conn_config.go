package framewiretcp

import (
	"errors"
	"net"
	"strings"
	"time"

	"github.com/arloliu/framewire/framewire"
	"github.com/arloliu/framewire/logger"
)

// ConnectionConfig represents the configuration parameters for a framewire
// TCP socket.
type ConnectionConfig struct {
	// host specifies the endpoint host: the remote host for a connecting
	// socket, the local bind host for a listening socket.
	host string

	// port specifies the TCP port number for the connection.
	port int

	// receiveTimeout bounds each receive attempt inside a driver tick so the
	// loop can never block longer than this on an idle peer.
	// Defaults to 250 milliseconds.
	receiveTimeout time.Duration

	// keepAliveInterval defines how long the connection may stay quiet before
	// a keepalive frame is sent.
	// Defaults to 500 milliseconds.
	keepAliveInterval time.Duration

	// connectTimeout defines the timeout for a single dial attempt.
	// Defaults to 3 seconds.
	connectTimeout time.Duration

	// acceptTimeout defines the deadline for each accept attempt while
	// listening, which bounds how quickly a shutdown request is observed.
	// Defaults to 250 milliseconds.
	acceptTimeout time.Duration

	// writeTimeout defines the write deadline for each outbound frame.
	// Defaults to 5 seconds.
	writeTimeout time.Duration

	// closeTimeout defines how long Close waits for the driver loop to reach
	// a terminal state before forcing termination.
	// Defaults to 5 seconds.
	closeTimeout time.Duration

	// retryMinDelay and retryMaxDelay bound the exponential backoff between
	// failed connect/bind attempts.
	// Defaults to 100 milliseconds and 2 seconds.
	retryMinDelay time.Duration
	retryMaxDelay time.Duration

	// sendQueuePrealloc defines the preallocated capacity of the outbound
	// queue's backing slice.
	// Defaults to 16.
	sendQueuePrealloc int

	// logger provides a logger instance for connection events and errors.
	logger logger.Logger
}

// NewConnectionConfig creates a new connection configuration with the given
// host, port number, and optional functional options.
//
// It initializes a ConnectionConfig struct with default values and then
// applies the provided options to customize the configuration.
//
// For a connecting socket the host is the remote endpoint; for a listening
// socket it is the local bind address.
//
// Returns a pointer to the initialized ConnectionConfig and an error if any
// occurred during the configuration process.
func NewConnectionConfig(host string, port int, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		receiveTimeout:    250 * time.Millisecond,
		keepAliveInterval: 500 * time.Millisecond,
		connectTimeout:    3 * time.Second,
		acceptTimeout:     250 * time.Millisecond,
		writeTimeout:      5 * time.Second,
		closeTimeout:      5 * time.Second,
		retryMinDelay:     100 * time.Millisecond,
		retryMaxDelay:     2 * time.Second,
		sendQueuePrealloc: 16,
		logger:            logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Host returns the configured endpoint host.
func (cfg *ConnectionConfig) Host() string { return cfg.host }

// Port returns the configured TCP port.
func (cfg *ConnectionConfig) Port() int { return cfg.port }

// KeepAliveInterval returns the configured keepalive interval.
func (cfg *ConnectionConfig) KeepAliveInterval() time.Duration { return cfg.keepAliveInterval }

// ReceiveTimeout returns the configured per-tick receive timeout.
func (cfg *ConnectionConfig) ReceiveTimeout() time.Duration { return cfg.receiveTimeout }

// ConnOption represents a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc struct {
	name      string
	applyFunc func(*ConnectionConfig) error
}

func (c *connOptFunc) apply(cfg *ConnectionConfig) error { return c.applyFunc(cfg) }

func newConnOptFunc(name string, f func(*ConnectionConfig) error) *connOptFunc {
	return &connOptFunc{name: name, applyFunc: f}
}

// withHost sets the endpoint host for the connection.
// It returns a ConnOption that validates the host and updates the configuration.
func withHost(host string) ConnOption {
	return newConnOptFunc("withHost", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		// Check if it's a valid IP address
		if ip := net.ParseIP(host); ip != nil {
			cfg.host = host
			return nil
		}

		// If not an IP, check if it's a valid domain name
		host = strings.TrimPrefix(host, ".")
		host = strings.TrimSuffix(host, ".")
		if _, err := net.LookupHost(host); err == nil {
			cfg.host = host
			return nil
		}

		return errors.New("invalid host")
	})
}

// withPort sets the TCP port number for the connection.
// It returns a ConnOption that validates the port number and updates the configuration.
// An error is returned if the port number is out of the valid range (0-65535).
// Port 0 is accepted for listening sockets, which bind an ephemeral port.
func withPort(port int) ConnOption {
	return newConnOptFunc("withPort", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if port < 0 || port > 65535 {
			return errors.New("port is out of range [0, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithReceiveTimeout sets the per-tick receive timeout.
// An error is returned if the timeout is outside the valid range
// (10 milliseconds to 5 seconds) or if the configuration is nil.
//
// The default value is 250 milliseconds.
func WithReceiveTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithReceiveTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if val < 10*time.Millisecond || val > 5*time.Second {
			return errors.New("receive timeout out of range [0.01, 5]")
		}
		cfg.receiveTimeout = val

		return nil
	})
}

// WithKeepAliveInterval sets the quiet period after which a keepalive frame
// is sent while connected.
// An error is returned if the interval is outside the valid range
// (10 milliseconds to 60 seconds) or if the configuration is nil.
//
// The default value is 500 milliseconds.
func WithKeepAliveInterval(val time.Duration) ConnOption {
	return newConnOptFunc("WithKeepAliveInterval", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if val < 10*time.Millisecond || val > 60*time.Second {
			return errors.New("keepalive interval out of range [0.01, 60]")
		}
		cfg.keepAliveInterval = val

		return nil
	})
}

// WithConnectTimeout sets the timeout for a single dial attempt.
// An error is returned if the timeout is outside the valid range
// (100 milliseconds to 30 seconds) or if the configuration is nil.
//
// The default value is 3 seconds.
func WithConnectTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithConnectTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if val < 100*time.Millisecond || val > 30*time.Second {
			return errors.New("connect timeout out of range [0.1, 30]")
		}
		cfg.connectTimeout = val

		return nil
	})
}

// WithAcceptTimeout sets the deadline for each accept attempt while listening.
// An error is returned if the timeout is outside the valid range
// (50 milliseconds to 2 seconds) or if the configuration is nil.
//
// The default value is 250 milliseconds.
func WithAcceptTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithAcceptTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if val < 50*time.Millisecond || val > 2*time.Second {
			return errors.New("accept timeout out of range [0.05, 2]")
		}
		cfg.acceptTimeout = val

		return nil
	})
}

// WithWriteTimeout sets the write deadline for each outbound frame.
// An error is returned if the timeout is outside the valid range
// (100 milliseconds to 120 seconds) or if the configuration is nil.
//
// The default value is 5 seconds.
func WithWriteTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithWriteTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if val < 100*time.Millisecond || val > 120*time.Second {
			return errors.New("write timeout out of range [0.1, 120]")
		}
		cfg.writeTimeout = val

		return nil
	})
}

// WithCloseTimeout sets how long Close waits for the driver loop to reach a
// terminal state before forcing termination.
// An error is returned if the timeout is outside the valid range
// (1 to 30 seconds) or if the configuration is nil.
//
// The default value is 5 seconds.
func WithCloseTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithCloseTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if val < 1*time.Second || val > 30*time.Second {
			return errors.New("close timeout out of range [1, 30]")
		}
		cfg.closeTimeout = val

		return nil
	})
}

// WithRetryDelay sets the bounds of the exponential backoff applied between
// failed connect or bind attempts.
// An error is returned if min is not positive, if max is smaller than min,
// or if the configuration is nil.
//
// The default bounds are 100 milliseconds and 2 seconds.
func WithRetryDelay(minDelay, maxDelay time.Duration) ConnOption {
	return newConnOptFunc("WithRetryDelay", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if minDelay <= 0 {
			return errors.New("retry min delay must be positive")
		}
		if maxDelay < minDelay {
			return errors.New("retry max delay must not be smaller than min delay")
		}
		cfg.retryMinDelay = minDelay
		cfg.retryMaxDelay = maxDelay

		return nil
	})
}

// WithSendQueuePrealloc sets the preallocated capacity of the outbound
// queue's backing slice.
// An error is returned if the size is outside the valid range (1-4096) or if
// the configuration is nil.
//
// The default value is 16.
func WithSendQueuePrealloc(size int) ConnOption {
	return newConnOptFunc("WithSendQueuePrealloc", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		if size < 1 || size > 4096 {
			return errors.New("send queue prealloc out of range [1, 4096]")
		}
		cfg.sendQueuePrealloc = size

		return nil
	})
}

// WithLogger sets the logger for the connection.
// An error is returned if the configuration is nil.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) ConnOption {
	return newConnOptFunc("WithLogger", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return framewire.ErrConfigNil
		}

		cfg.logger = l

		return nil
	})
}

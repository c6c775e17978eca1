package framewiretcp

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig is the on-disk TOML shape of a connection configuration.
// Durations use Go duration syntax, e.g. "250ms" or "3s".
type fileConfig struct {
	Host              string   `toml:"host"`
	Port              int      `toml:"port"`
	ReceiveTimeout    duration `toml:"receive_timeout"`
	KeepAliveInterval duration `toml:"keepalive_interval"`
	ConnectTimeout    duration `toml:"connect_timeout"`
	AcceptTimeout     duration `toml:"accept_timeout"`
	WriteTimeout      duration `toml:"write_timeout"`
	CloseTimeout      duration `toml:"close_timeout"`
	RetryMinDelay     duration `toml:"retry_min_delay"`
	RetryMaxDelay     duration `toml:"retry_max_delay"`
	SendQueuePrealloc int      `toml:"send_queue_prealloc"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))

	return err
}

// LoadConnectionConfig builds a ConnectionConfig from a TOML file. Settings
// absent from the file keep their defaults; the opts are applied after the
// file and override it.
//
// Example file:
//
//	host = "127.0.0.1"
//	port = 49674
//	receive_timeout = "250ms"
//	keepalive_interval = "500ms"
func LoadConnectionConfig(path string, opts ...ConnOption) (*ConnectionConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	fileOpts := make([]ConnOption, 0, 9)
	if fc.ReceiveTimeout.Duration != 0 {
		fileOpts = append(fileOpts, WithReceiveTimeout(fc.ReceiveTimeout.Duration))
	}
	if fc.KeepAliveInterval.Duration != 0 {
		fileOpts = append(fileOpts, WithKeepAliveInterval(fc.KeepAliveInterval.Duration))
	}
	if fc.ConnectTimeout.Duration != 0 {
		fileOpts = append(fileOpts, WithConnectTimeout(fc.ConnectTimeout.Duration))
	}
	if fc.AcceptTimeout.Duration != 0 {
		fileOpts = append(fileOpts, WithAcceptTimeout(fc.AcceptTimeout.Duration))
	}
	if fc.WriteTimeout.Duration != 0 {
		fileOpts = append(fileOpts, WithWriteTimeout(fc.WriteTimeout.Duration))
	}
	if fc.CloseTimeout.Duration != 0 {
		fileOpts = append(fileOpts, WithCloseTimeout(fc.CloseTimeout.Duration))
	}
	if fc.RetryMinDelay.Duration != 0 || fc.RetryMaxDelay.Duration != 0 {
		fileOpts = append(fileOpts, WithRetryDelay(fc.RetryMinDelay.Duration, fc.RetryMaxDelay.Duration))
	}
	if fc.SendQueuePrealloc != 0 {
		fileOpts = append(fileOpts, WithSendQueuePrealloc(fc.SendQueuePrealloc))
	}

	fileOpts = append(fileOpts, opts...)

	return NewConnectionConfig(fc.Host, fc.Port, fileOpts...)
}

package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultKeyPrefix      = "azset:"
)

type Config struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration // defaults to DefaultConnectTimeout
}

// Client is a valkey connection plus the key namespace settings live in.
type Client struct {
	inner     valkeylib.Client
	keyPrefix string
}

// NewClient connects and pings the server. The caller must Close it.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("valkey address is required")
	}
	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
		Password:    cfg.Password,
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to ping valkey at %s (timeout: %v): %w", cfg.Address, timeout, err)
	}

	return &Client{
		inner:     inner,
		keyPrefix: normalizePrefix(cfg.KeyPrefix),
	}, nil
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return DefaultKeyPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix
}

func (c *Client) Inner() valkeylib.Client {
	return c.inner
}

func (c *Client) Close() {
	if c.inner != nil {
		c.inner.Close()
	}
}

// Key joins parts under the prefix: Key("settings", "grand-opus-settings")
// is "azset:settings:grand-opus-settings".
func (c *Client) Key(parts ...string) string {
	if len(parts) == 0 {
		return strings.TrimSuffix(c.keyPrefix, ":")
	}
	return c.keyPrefix + strings.Join(parts, ":")
}

func (c *Client) KeyPrefix() string {
	return c.keyPrefix
}

func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// IsNil reports a valkey NIL reply (missing key).
func IsNil(err error) bool {
	return valkeylib.IsValkeyNil(err)
}

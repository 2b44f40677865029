package mobotix

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// DefaultCommandTimeout bounds a single control command round trip. When it
// expires the command's effect on the camera is unknown; retrying is the
// caller's decision, never this layer's.
const DefaultCommandTimeout = 15 * time.Second

// okResponse is the only body the serial bridge returns on success.
const okResponse = "OK"

// InvalidResponseError means the camera was reachable but did not
// acknowledge a control command, usually bad credentials or a device-side
// rejection. The raw body is kept for remote diagnosis.
type InvalidResponseError struct {
	Body string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("pan-tilt unit did not respond with OK (body %q)", e.Body)
}

// Sender relays a single wire command to the camera, returning the verified
// device acknowledgement.
type Sender interface {
	Send(ctx context.Context, cmd Command) (string, error)
}

// TransportConfig describes how to reach the camera's control channel.
type TransportConfig struct {
	// Host is the camera IP or URL.
	Host     string
	User     string
	Password string
	// Timeout bounds each command; DefaultCommandTimeout when zero.
	Timeout time.Duration
}

// Transport relays wire commands to the camera's serial control bridge over
// HTTP. Exactly one outbound request is made per command; failures are
// reported up, never retried or swallowed.
type Transport struct {
	host     string
	user     string
	password string
	timeout  time.Duration
	client   *http.Client
	logger   golog.Logger
}

// NewTransport returns a Transport for the camera at config.Host.
func NewTransport(config TransportConfig, logger golog.Logger) (*Transport, error) {
	if config.Host == "" {
		return nil, errors.New("camera host is required")
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultCommandTimeout
	}
	return &Transport{
		host:     config.Host,
		user:     config.User,
		password: config.Password,
		timeout:  timeout,
		client:   &http.Client{},
		logger:   logger,
	}, nil
}

// Send issues one authenticated control request carrying the wire command.
// Success requires the trimmed response body to be exactly "OK"; anything
// else is an *InvalidResponseError. On deadline expiry the returned error
// wraps context.DeadlineExceeded.
func (t *Transport) Send(ctx context.Context, cmd Command) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	url := fmt.Sprintf("http://%s/control/rcontrol?action=putrs232&rs232outtext=%s", t.host, cmd)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "building control request for command %s", cmd)
	}
	req.SetBasicAuth(t.user, t.password)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "sending control command %s", cmd)
	}
	defer goutils.UncheckedErrorFunc(resp.Body.Close)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "reading control response for command %s", cmd)
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed != okResponse {
		t.logger.Warnw("pan-tilt unit did not respond with OK", "command", cmd, "body", trimmed)
		return "", &InvalidResponseError{Body: string(body)}
	}
	return trimmed, nil
}
